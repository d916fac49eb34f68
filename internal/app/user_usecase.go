package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"gotasker/internal/domain/entities"
	"gotasker/internal/ports/api"
	"gotasker/internal/ports/cache"
	"gotasker/internal/ports/repositories"
	svc "gotasker/internal/ports/services"
	"gotasker/pkg/logger"
)

// Ограничения загружаемых аватаров.
const (
	MaxAvatarSize = 1_000_000
	AvatarWidth   = 250
	AvatarHeight  = 250
)

const (
	methodGetProfile    = "GetProfile"
	methodUpdateProfile = "UpdateProfile"
	methodDeleteAccount = "DeleteAccount"
	methodUploadAvatar  = "UploadAvatar"
	methodDeleteAvatar  = "DeleteAvatar"
	methodGetAvatar     = "GetAvatar"

	msgRequestingProfile = "requesting user profile"
	msgEmptyUserID       = "empty user ID provided"
	msgProfileRetrieved  = "user profile successfully retrieved"
	msgUpdatingProfile   = "updating user profile"
	msgProfileUpdated    = "user profile updated"
	msgDeletingAccount   = "deleting user account"
	msgAccountDeleted    = "user account deleted"
	msgUploadingAvatar   = "uploading user avatar"
	msgAvatarStored      = "avatar stored"
	msgDeletingAvatar    = "deleting user avatar"
	msgAvatarDeleted     = "avatar deleted"
	msgServingAvatar     = "serving user avatar"
	msgAvatarCacheHit    = "avatar served from cache"

	msgErrFindingUserByID  = "failed to find user by ID"
	msgErrUpdatingUser     = "failed to update user"
	msgErrCascadeTasks     = "failed to delete owned tasks, aborting account deletion"
	msgErrCascadeTokens    = "failed to revoke user tokens, aborting account deletion"
	msgErrDeletingUser     = "failed to delete user record"
	msgErrResizingAvatar   = "failed to normalize avatar image"
	msgErrStoringAvatar    = "failed to store avatar"
	msgErrClearingAvatar   = "failed to clear avatar"
	msgErrFetchingAvatar   = "failed to fetch avatar"
	msgErrAvatarCacheRead  = "failed to read avatar cache"
	msgErrAvatarCacheWrite = "failed to write avatar cache"
	msgErrAvatarCacheDrop  = "failed to invalidate avatar cache"
	msgErrSendGoodbye      = "failed to send goodbye notification"

	errCtxValidatingUserID = "validating user ID"
	errCtxFetchingProfile  = "fetching user profile"
	errCtxUpdatingProfile  = "updating user profile"
	errCtxDeletingTasks    = "deleting owned tasks"
	errCtxRevokingTokens   = "revoking user tokens"
	errCtxDeletingUser     = "deleting user"
	errCtxValidatingAvatar = "validating avatar"
	errCtxResizingAvatar   = "resizing avatar"
	errCtxStoringAvatar    = "storing avatar"
	errCtxClearingAvatar   = "clearing avatar"
	errCtxFetchingAvatar   = "fetching avatar"
)

// Ключ кэша аватара.
func avatarCacheKey(userID string) string {
	return "avatar:" + userID
}

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo    repositories.UserRepository
	taskRepo    repositories.TaskRepository
	tokenRepo   repositories.TokenRepository
	passwordSvc svc.PasswordService
	imageSvc    svc.ImageService
	mailer      svc.MailerService
	avatarCache cache.Cache
	avatarTTL   time.Duration
}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
func NewUserUseCase(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	tokenRepo repositories.TokenRepository,
	passwordSvc svc.PasswordService,
	imageSvc svc.ImageService,
	mailer svc.MailerService,
	avatarCache cache.Cache,
	avatarTTL time.Duration,
) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		tokenRepo:   tokenRepo,
		passwordSvc: passwordSvc,
		imageSvc:    imageSvc,
		mailer:      mailer,
		avatarCache: avatarCache,
		avatarTTL:   avatarTTL,
	}
}

// GetProfile получает профиль пользователя по ID.
func (u *UserUseCaseImpl) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetProfile), zap.String("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	if userID == "" {
		log.Debug(ctx, msgEmptyUserID)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	log.Info(ctx, msgProfileRetrieved)
	return user, nil
}

// UpdateProfile применяет разрешенные изменения профиля.
// Проверка списка разрешенных полей выполняется на границе HTTP;
// здесь валидируются значения затронутых полей.
func (u *UserUseCaseImpl) UpdateProfile(ctx context.Context, userID string, update api.ProfileUpdate) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateProfile), zap.String("userID", userID))
	log.Debug(ctx, msgUpdatingProfile)

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingName, entities.ErrEmptyName)
		}
		user.Name = name
	}
	if update.Email != nil {
		email, err := normalizeEmail(*update.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
		}
		user.Email = email
	}
	if update.Password != nil {
		password := strings.TrimSpace(*update.Password)
		if err := validatePassword(password); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
		}
		hash, err := u.passwordSvc.Hash(ctx, password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
		}
		user.PasswordHash = hash
	}
	if update.Age != nil {
		if *update.Age < 0 {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingAge, entities.ErrNegativeAge)
		}
		user.Age = *update.Age
	}

	updatedUser, err := u.userRepo.Update(ctx, user)
	if err != nil {
		log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingProfile, err)
	}

	log.Info(ctx, msgProfileUpdated)
	return updatedUser, nil
}

// DeleteAccount каскадно удаляет учетную запись: сперва задачи,
// затем токены, последним - сам пользователь. Сбой любого шага
// прерывает удаление, так что осиротевшие задачи не появляются.
// Параллельное создание задачи может пережить каскад; это принятое
// ограничение упорядоченного удаления без общей транзакции.
func (u *UserUseCaseImpl) DeleteAccount(ctx context.Context, user *entities.User) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteAccount), zap.String("userID", user.ID))
	log.Debug(ctx, msgDeletingAccount)

	deleted, err := u.taskRepo.DeleteByOwner(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrCascadeTasks, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingTasks, err)
	}

	if err := u.tokenRepo.RevokeAll(ctx, user.ID); err != nil {
		log.Error(ctx, msgErrCascadeTokens, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingTokens, err)
	}

	if err := u.userRepo.Delete(ctx, user.ID); err != nil {
		log.Error(ctx, msgErrDeletingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxDeletingUser, err)
	}

	u.dropAvatarCache(ctx, user.ID)
	u.dispatchGoodbye(ctx, user.Email, user.Name)

	log.Info(ctx, msgAccountDeleted, zap.Int64("tasks_deleted", deleted))
	return nil
}

// UploadAvatar проверяет, нормализует и сохраняет аватар пользователя.
func (u *UserUseCaseImpl) UploadAvatar(ctx context.Context, userID, filename string, data []byte) error {
	log := logger.Log(ctx).With(zap.String("method", methodUploadAvatar), zap.String("userID", userID))
	log.Debug(ctx, msgUploadingAvatar, zap.Int("size", len(data)))

	if len(data) == 0 || len(data) > MaxAvatarSize {
		return fmt.Errorf("%s: %w", errCtxValidatingAvatar, entities.ErrAvatarTooLarge)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return fmt.Errorf("%s: %w", errCtxValidatingAvatar, entities.ErrUnsupportedImage)
	}

	normalized, err := u.imageSvc.Resize(ctx, data, AvatarWidth, AvatarHeight)
	if err != nil {
		log.Debug(ctx, msgErrResizingAvatar, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxResizingAvatar, err)
	}

	if err := u.userRepo.UpdateAvatar(ctx, userID, normalized); err != nil {
		log.Error(ctx, msgErrStoringAvatar, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxStoringAvatar, err)
	}

	u.dropAvatarCache(ctx, userID)

	log.Info(ctx, msgAvatarStored)
	return nil
}

// DeleteAvatar очищает аватар пользователя.
func (u *UserUseCaseImpl) DeleteAvatar(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteAvatar), zap.String("userID", userID))
	log.Debug(ctx, msgDeletingAvatar)

	if err := u.userRepo.UpdateAvatar(ctx, userID, nil); err != nil {
		log.Error(ctx, msgErrClearingAvatar, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxClearingAvatar, err)
	}

	u.dropAvatarCache(ctx, userID)

	log.Info(ctx, msgAvatarDeleted)
	return nil
}

// GetAvatar возвращает аватар пользователя, используя кэш для публичных чтений.
func (u *UserUseCaseImpl) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetAvatar), zap.String("userID", userID))
	log.Debug(ctx, msgServingAvatar)

	cached, err := u.avatarCache.Get(ctx, avatarCacheKey(userID))
	if err != nil {
		log.Warn(ctx, msgErrAvatarCacheRead, zap.Error(err))
	}
	if len(cached) > 0 {
		log.Debug(ctx, msgAvatarCacheHit)
		return cached, nil
	}

	avatar, err := u.userRepo.FindAvatar(ctx, userID)
	if err != nil {
		log.Debug(ctx, msgErrFetchingAvatar, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFetchingAvatar, err)
	}

	if err := u.avatarCache.Set(ctx, avatarCacheKey(userID), avatar, u.avatarTTL); err != nil {
		log.Warn(ctx, msgErrAvatarCacheWrite, zap.Error(err))
	}

	return avatar, nil
}

func (u *UserUseCaseImpl) dropAvatarCache(ctx context.Context, userID string) {
	if err := u.avatarCache.Delete(ctx, avatarCacheKey(userID)); err != nil {
		logger.Log(ctx).Warn(ctx, msgErrAvatarCacheDrop, zap.Error(err))
	}
}

// Отправка прощального уведомления: ошибки доставки не влияют
// на результат удаления учетной записи.
func (u *UserUseCaseImpl) dispatchGoodbye(ctx context.Context, email, name string) {
	mailCtx := context.WithoutCancel(ctx)
	go func() {
		if err := u.mailer.SendGoodbye(mailCtx, email, name); err != nil {
			logger.Log(mailCtx).Warn(mailCtx, msgErrSendGoodbye, zap.Error(err))
		}
	}()
}
