// Package users содержит HTTP обработчики учетных записей.
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gotasker/internal/adapters/http/middleware"
	"gotasker/internal/app/dto"
	"gotasker/internal/domain/entities"
	"gotasker/internal/domain/services"
	"gotasker/internal/ports/api"
	"gotasker/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister     = "user handler: register"
	LogHandlerLogin        = "user handler: login"
	LogHandlerLogout       = "user handler: logout"
	LogHandlerLogoutAll    = "user handler: logout all"
	LogHandlerGetProfile   = "user handler: get profile"
	LogHandlerPatchProfile = "user handler: patch profile"
	LogHandlerDeleteMe     = "user handler: delete account"
	LogHandlerUploadAvatar = "user handler: upload avatar"
	LogHandlerDeleteAvatar = "user handler: delete avatar"
	LogHandlerGetAvatar    = "user handler: get avatar"

	ErrorInvalidRequest       = "invalid request"
	ErrorInvalidUpdates       = "invalid updates"
	ErrorUnableToLogin        = "unable to login"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorMissingUserContext   = "missing user context"
)

const avatarFormField = "avatar"

// Поля профиля, разрешенные к изменению через PATCH.
var allowedProfileFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

// Handler содержит HTTP обработчики учетных записей.
type Handler struct {
	authUseCase api.AuthUseCase
	userUseCase api.UserUseCase
}

// NewHandler создает новый экземпляр обработчика учетных записей.
func NewHandler(authUseCase api.AuthUseCase, userUseCase api.UserUseCase) *Handler {
	return &Handler{
		authUseCase: authUseCase,
		userUseCase: userUseCase,
	}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("binding JSON: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	credentials, err := h.authUseCase.Register(requestCtx, req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		return respondError(ctx, log, "registering user", err)
	}

	if err := ctx.Status(http.StatusCreated).JSON(dto.AuthResponse{
		User:  dto.NewUserResponse(credentials.User),
		Token: credentials.Token,
	}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Login обрабатывает запрос на вход пользователя.
// Несуществующий email и неверный пароль неразличимы в ответе.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("binding JSON: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	credentials, err := h.authUseCase.Login(requestCtx, req.Email, req.Password)
	if err != nil {
		log.Debug(requestCtx, ErrorUnableToLogin, zap.Error(err))
		return fmt.Errorf("logging in: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorUnableToLogin,
		}))
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.AuthResponse{
		User:  dto.NewUserResponse(credentials.User),
		Token: credentials.Token,
	}); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Logout отзывает токен текущей сессии.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogout)

	user, token, err := currentSession(ctx)
	if err != nil {
		return err
	}

	if err := h.authUseCase.Logout(requestCtx, user.ID, token); err != nil {
		return respondError(ctx, log, "logging out", err)
	}

	if err := ctx.Status(http.StatusOK).Send(nil); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// LogoutAll отзывает все токены пользователя.
func (h *Handler) LogoutAll(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogoutAll)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	if err := h.authUseCase.LogoutAll(requestCtx, user.ID); err != nil {
		return respondError(ctx, log, "logging out everywhere", err)
	}

	if err := ctx.Status(http.StatusOK).Send(nil); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// GetProfile возвращает профиль текущего пользователя.
func (h *Handler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGetProfile)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewUserResponse(user)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// PatchProfile применяет изменения к профилю текущего пользователя.
// Запросы с ключами вне разрешенного набора отклоняются целиком.
func (h *Handler) PatchProfile(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerPatchProfile)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(ctx.Body(), &raw); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("parsing body: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}
	for field := range raw {
		if _, ok := allowedProfileFields[field]; !ok {
			return fmt.Errorf("validating fields: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": ErrorInvalidUpdates,
			}))
		}
	}

	var update api.ProfileUpdate
	if err := json.Unmarshal(ctx.Body(), &update); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("parsing update: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	updated, err := h.userUseCase.UpdateProfile(requestCtx, user.ID, update)
	if err != nil {
		return respondError(ctx, log, "updating profile", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewUserResponse(updated)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// DeleteMe удаляет учетную запись текущего пользователя вместе с
// его задачами и сессиями.
func (h *Handler) DeleteMe(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerDeleteMe)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	if err := h.userUseCase.DeleteAccount(requestCtx, user); err != nil {
		return respondError(ctx, log, "deleting account", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewUserResponse(user)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// UploadAvatar принимает multipart изображение и сохраняет его как аватар.
func (h *Handler) UploadAvatar(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerUploadAvatar)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile(avatarFormField)
	if err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("reading form file: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "avatar file is required",
		}))
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("reading upload: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	if err := h.userUseCase.UploadAvatar(requestCtx, user.ID, fileHeader.Filename, data); err != nil {
		return respondError(ctx, log, "uploading avatar", err)
	}

	if err := ctx.Status(http.StatusOK).Send(nil); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// DeleteAvatar очищает аватар текущего пользователя.
func (h *Handler) DeleteAvatar(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerDeleteAvatar)

	user, _, err := currentSession(ctx)
	if err != nil {
		return err
	}

	if err := h.userUseCase.DeleteAvatar(requestCtx, user.ID); err != nil {
		return respondError(ctx, log, "deleting avatar", err)
	}

	if err := ctx.Status(http.StatusOK).Send(nil); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// GetAvatar отдает аватар пользователя по ID. Маршрут публичный.
func (h *Handler) GetAvatar(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGetAvatar)

	avatar, err := h.userUseCase.GetAvatar(requestCtx, ctx.Params("id"))
	if err != nil {
		return respondError(ctx, log, "serving avatar", err)
	}

	ctx.Set(fiber.HeaderContentType, "image/png")
	if err := ctx.Status(http.StatusOK).Send(avatar); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// currentSession извлекает аутентифицированного пользователя и токен из Locals.
func currentSession(ctx fiber.Ctx) (*entities.User, string, error) {
	user, ok := ctx.Locals(middleware.ContextKeyUser).(*entities.User)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", ErrorMissingUserContext,
			ctx.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": middleware.MessageUnauthorized,
			}))
	}
	token, _ := ctx.Locals(middleware.ContextKeyToken).(string)
	return user, token, nil
}

// respondError переводит доменные ошибки в HTTP статусы: ошибки валидации
// в 400 с описанием, отсутствие записей в 404 с пустым телом,
// прочее в 500.
func respondError(ctx fiber.Ctx, log *logger.Logger, action string, err error) error {
	requestCtx := ctx.Context()

	var validationErr error
	for _, candidate := range []error{
		entities.ErrEmptyName,
		entities.ErrInvalidEmail,
		entities.ErrNegativeAge,
		entities.ErrPasswordTooShort,
		entities.ErrPasswordForbidden,
		entities.ErrAvatarTooLarge,
		entities.ErrUnsupportedImage,
		services.ErrEmailAlreadyExists,
	} {
		if errors.Is(err, candidate) {
			validationErr = candidate
			break
		}
	}

	switch {
	case validationErr != nil:
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Error(),
		}))
	case errors.Is(err, entities.ErrUserNotFound), errors.Is(err, entities.ErrAvatarNotFound):
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusNotFound).Send(nil))
	default:
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": ErrorFailedToServeRequest,
		}))
	}
}
