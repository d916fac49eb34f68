package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gotasker/pkg/logger"
)

// Константы для сообщений о восстановлении после паники.
const (
	LogPanicRecovered    = "panic recovered while handling request"
	LogPanicResponseLost = "failed to respond after panic"

	MessageInternalError = "failed to serve request"
)

// NewRecoveryMiddleware перехватывает панику обработчика и превращает
// ее в ответ 500, чтобы один запрос не ронял весь сервер.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		log := logger.Log(requestCtx)

		defer func() {
			if r := recover(); r != nil {
				log.Error(requestCtx, LogPanicRecovered,
					zap.String("panic", fmt.Sprintf("%v", r)),
					zap.String("path", ctx.Path()),
					zap.String("stack", string(debug.Stack())),
				)

				if err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": MessageInternalError,
				}); err != nil {
					log.Error(requestCtx, LogPanicResponseLost, zap.Error(err))
				}
			}
		}()

		return ctx.Next()
	}
}
