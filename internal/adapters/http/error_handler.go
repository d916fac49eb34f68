package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"
)

const errorFailedToServeRequest = "failed to serve request"

// NewErrorHandler возвращает обработчик ошибок для fiber.Config.
// Обработчики и промежуточное ПО формируют ответ до возврата ошибки,
// поэтому уже записанный ответ сохраняется без изменений.
func NewErrorHandler() fiber.ErrorHandler {
	return func(ctx fiber.Ctx, err error) error {
		if ctx.Response().StatusCode() != fiber.StatusOK || len(ctx.Response().Body()) > 0 {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error": fiberErr.Message,
			})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": errorFailedToServeRequest,
		})
	}
}
