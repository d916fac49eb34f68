// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gotasker/internal/ports/api"
	"gotasker/pkg/logger"
)

// Ключи Locals для аутентифицированного запроса.
const (
	ContextKeyUser  = "currentUser"
	ContextKeyToken = "sessionToken"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader   = "no authorization header provided"
	ErrorAuthFailed     = "authentication failed"
	MessageUnauthorized = "please authenticate"
)

// NewAuthMiddleware создает промежуточное ПО, проверяющее Bearer токен.
// Отсутствие заголовка, неразборный токен, отозванная сессия и
// несуществующий пользователь дают одинаковый ответ 401.
func NewAuthMiddleware(authUseCase api.AuthUseCase) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return fmt.Errorf("%s: %w", ErrorNoAuthHeader,
				ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": MessageUnauthorized,
				}))
		}

		user, err := authUseCase.Authenticate(requestCtx, token)
		if err != nil {
			log.Debug(requestCtx, ErrorAuthFailed, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorAuthFailed,
				ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": MessageUnauthorized,
				}))
		}

		ctx.Locals(ContextKeyUser, user)
		ctx.Locals(ContextKeyToken, token)

		return ctx.Next()
	}
}
