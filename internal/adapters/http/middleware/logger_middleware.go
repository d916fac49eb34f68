package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gotasker/pkg/logger"
)

// Константы для сообщений журнала запросов.
const (
	LogRequestReceived = "request received"
	LogRequestServed   = "request served"
	LogRequestAborted  = "request aborted"

	errCtxServingRequest = "serving request"
)

// NewLoggerMiddleware создает промежуточное ПО, журналирующее каждый
// HTTP запрос вместе с итоговым статусом и длительностью обработки.
func NewLoggerMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := ctx.Context()
		start := time.Now()

		log := logger.Log(requestCtx).With(
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.String("ip", ctx.IP()),
		)

		log.Info(requestCtx, LogRequestReceived)

		err := ctx.Next()

		resultFields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("bytes", len(ctx.Response().Body())),
		}

		if err != nil {
			log.Error(requestCtx, LogRequestAborted, append(resultFields, zap.Error(err))...)
			return fmt.Errorf("%s: %w", errCtxServingRequest, err)
		}

		log.Info(requestCtx, LogRequestServed, resultFields...)
		return nil
	}
}
