// Package app реализует бизнес-логику сервиса задач.
package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"gotasker/internal/domain/entities"
	"gotasker/internal/domain/services"
	"gotasker/internal/ports/api"
	"gotasker/internal/ports/repositories"
	svc "gotasker/internal/ports/services"
	"gotasker/pkg/logger"
)

const (
	methodRegister     = "Register"
	methodLogin        = "Login"
	methodAuthenticate = "Authenticate"
	methodLogout       = "Logout"
	methodLogoutAll    = "LogoutAll"
	methodIssueToken   = "issueToken"

	msgStartRegistration   = "starting user registration"
	msgInvalidName         = "invalid name provided"
	msgInvalidEmailFormat  = "invalid email format"
	msgInvalidPassword     = "invalid password"
	msgInvalidAge          = "invalid age provided"
	msgEmailExists         = "user with this email already exists"
	msgUserRegistered      = "user registered successfully"
	msgLoginAttempt        = "login attempt"
	msgLoginNonExistent    = "login attempt with non-existent email"
	msgInvalidPassAuth     = "invalid password provided"
	msgUserLoggedIn        = "user logged in successfully"
	msgResolvingToken      = "resolving session token"
	msgTokenNotLive        = "token is not in the live token set"
	msgTokenResolved       = "session token resolved"
	msgProcessingLogout    = "processing logout request"
	msgUserLoggedOut       = "user logged out successfully"
	msgProcessingLogoutAll = "processing logout-all request"
	msgAllSessionsClosed   = "all user sessions closed"
	msgTokenIssued         = "session token issued"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrHashPassword      = "failed to hash password"
	msgErrCreateUser        = "failed to create user"
	msgErrIssueToken        = "failed to issue session token"
	msgErrFindingUser       = "error finding user by email"
	msgErrVerifyingPassword = "error verifying password"
	msgErrFindingTokenUser  = "failed to find user for session token"
	msgErrCheckingToken     = "failed to check live token set"
	msgErrRevokingToken     = "failed to revoke session token"
	msgErrRevokingAll       = "failed to revoke all user tokens"
	msgErrSendWelcome       = "failed to send welcome notification"

	errCtxValidatingName     = "validating name"
	errCtxValidatingEmail    = "validating email"
	errCtxValidatingPassword = "validating password"
	errCtxValidatingAge      = "validating age"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxIssuingToken       = "issuing token"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxFindingUser        = "finding user"
	errCtxVerifyingPassword  = "verifying password"
	errCtxVerifyingToken     = "verifying token"
	errCtxResolvingUser      = "resolving token user"
	errCtxCheckingToken      = "checking live token"
	errCtxRevokingToken      = "revoking token"
	errCtxRevokingAll        = "revoking all tokens"
	errCtxStoringToken       = "storing token"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	tokenRepo   repositories.TokenRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	mailer      svc.MailerService
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	mailer svc.MailerService,
) api.AuthUseCase {
	return &AuthUseCaseImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		mailer:      mailer,
	}
}

// Register создает нового пользователя и выпускает первый токен сеанса.
func (a *AuthUseCaseImpl) Register(ctx context.Context, name, email, password string, age int) (*services.Credentials, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	name = strings.TrimSpace(name)
	if name == "" {
		log.Debug(ctx, msgInvalidName)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingName, entities.ErrEmptyName)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	password = strings.TrimSpace(password)
	if err := validatePassword(password); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}
	if age < 0 {
		log.Debug(ctx, msgInvalidAge)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingAge, entities.ErrNegativeAge)
	}

	existingUser, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}
	if existingUser != nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	newUser := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Age:          age,
	}

	createdUser, err := a.userRepo.Create(ctx, newUser)
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", createdUser.ID))

	a.dispatchWelcome(ctx, createdUser.Email, createdUser.Name)

	token, err := a.issueToken(ctx, createdUser.ID)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err), zap.String("userID", createdUser.ID))
		return nil, err
	}

	return &services.Credentials{User: createdUser, Token: token}, nil
}

// Login аутентифицирует пользователя по email и паролю и выпускает новый
// токен сеанса, не отзывая уже существующие.
func (a *AuthUseCaseImpl) Login(ctx context.Context, email, password string) (*services.Credentials, error) {
	log := logger.Log(ctx).With(zap.String("method", methodLogin), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgLoginNonExistent)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	valid, err := a.passwordSvc.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !valid {
		log.Debug(ctx, msgInvalidPassAuth, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	log.Info(ctx, msgUserLoggedIn, zap.String("userID", user.ID))

	token, err := a.issueToken(ctx, user.ID)
	if err != nil {
		log.Error(ctx, msgErrIssueToken, zap.Error(err), zap.String("userID", user.ID))
		return nil, err
	}

	return &services.Credentials{User: user, Token: token}, nil
}

// Authenticate разрешает токен сеанса в действующего пользователя.
// Подпись делает токен самопроверяемым, но действительным он считается
// только пока присутствует в наборе живых токенов пользователя:
// это и делает logout эффективным.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate))
	log.Debug(ctx, msgResolvingToken)

	userID, err := a.tokenSvc.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingToken, err)
	}

	user, err := a.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgTokenNotLive, zap.String("userID", userID))
			return nil, fmt.Errorf("%s: %w", errCtxResolvingUser, services.ErrUnauthenticated)
		}
		log.Error(ctx, msgErrFindingTokenUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxResolvingUser, err)
	}

	live, err := a.tokenRepo.Exists(ctx, user.ID, token)
	if err != nil {
		log.Error(ctx, msgErrCheckingToken, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingToken, err)
	}
	if !live {
		log.Debug(ctx, msgTokenNotLive, zap.String("userID", user.ID))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingToken, services.ErrUnauthenticated)
	}

	log.Debug(ctx, msgTokenResolved, zap.String("userID", user.ID))
	return user, nil
}

// Logout отзывает один конкретный токен сеанса (выход с одного устройства).
func (a *AuthUseCaseImpl) Logout(ctx context.Context, userID, token string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogout), zap.String("userID", userID))
	log.Debug(ctx, msgProcessingLogout)

	if err := a.tokenRepo.Revoke(ctx, userID, token); err != nil {
		log.Error(ctx, msgErrRevokingToken, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingToken, err)
	}

	log.Info(ctx, msgUserLoggedOut)
	return nil
}

// LogoutAll отзывает все токены пользователя (выход со всех устройств).
func (a *AuthUseCaseImpl) LogoutAll(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodLogoutAll), zap.String("userID", userID))
	log.Debug(ctx, msgProcessingLogoutAll)

	if err := a.tokenRepo.RevokeAll(ctx, userID); err != nil {
		log.Error(ctx, msgErrRevokingAll, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxRevokingAll, err)
	}

	log.Info(ctx, msgAllSessionsClosed)
	return nil
}

// Вспомогательная функция для выпуска и сохранения токена сеанса.
func (a *AuthUseCaseImpl) issueToken(ctx context.Context, userID string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodIssueToken), zap.String("userID", userID))

	token, err := a.tokenSvc.Issue(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrTokenIssueFailed, err)
	}

	if err := a.tokenRepo.Store(ctx, &services.SessionToken{
		UserID: userID,
		Token:  token,
	}); err != nil {
		return "", fmt.Errorf("%s: %w", errCtxStoringToken, err)
	}

	log.Debug(ctx, msgTokenIssued)
	return token, nil
}

// Отправка приветственного уведомления: ошибки доставки не влияют
// на результат регистрации.
func (a *AuthUseCaseImpl) dispatchWelcome(ctx context.Context, email, name string) {
	mailCtx := context.WithoutCancel(ctx)
	go func() {
		if err := a.mailer.SendWelcome(mailCtx, email, name); err != nil {
			logger.Log(mailCtx).Warn(mailCtx, msgErrSendWelcome, zap.Error(err))
		}
	}()
}

// Нормализация email: обрезка пробелов, приведение к нижнему регистру,
// проверка формата.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !emailRegex.MatchString(email) {
		return "", entities.ErrInvalidEmail
	}
	return email, nil
}

// Валидация пароля: минимум 7 символов и без слова "password".
func validatePassword(password string) error {
	if len(password) < services.MinPasswordLength {
		return entities.ErrPasswordTooShort
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return entities.ErrPasswordForbidden
	}
	return nil
}
