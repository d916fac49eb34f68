// Package tasks содержит HTTP обработчики задач.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"gotasker/internal/adapters/http/middleware"
	"gotasker/internal/app"
	"gotasker/internal/app/dto"
	"gotasker/internal/domain/entities"
	"gotasker/internal/ports/api"
	"gotasker/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerCreate = "task handler: create"
	LogHandlerList   = "task handler: list"
	LogHandlerGet    = "task handler: get"
	LogHandlerPatch  = "task handler: patch"
	LogHandlerDelete = "task handler: delete"

	ErrorInvalidRequest       = "invalid request"
	ErrorInvalidUpdates       = "invalid updates"
	ErrorFailedToServeRequest = "failed to serve request"
	ErrorMissingUserContext   = "missing user context"
)

// Поля задачи, разрешенные к изменению через PATCH.
var allowedTaskFields = map[string]struct{}{
	"description": {},
	"completed":   {},
}

// Handler содержит HTTP обработчики задач.
type Handler struct {
	taskUseCase api.TaskUseCase
}

// NewHandler создает новый экземпляр обработчика задач.
func NewHandler(taskUseCase api.TaskUseCase) *Handler {
	return &Handler{taskUseCase: taskUseCase}
}

// Create обрабатывает запрос на создание задачи.
func (h *Handler) Create(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerCreate)

	owner, err := currentUser(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("binding JSON: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	task, err := h.taskUseCase.Create(requestCtx, owner.ID, req.Description, req.Completed)
	if err != nil {
		return respondError(ctx, log, "creating task", err)
	}

	if err := ctx.Status(http.StatusCreated).JSON(dto.NewTaskResponse(task)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// List возвращает задачи текущего пользователя. Параметры запроса
// completed, sortBy, limit и skip необязательны; непарсящиеся значения
// заменяются умолчаниями.
func (h *Handler) List(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerList)

	owner, err := currentUser(ctx)
	if err != nil {
		return err
	}

	filter := app.ParseTaskFilter(
		ctx.Query("completed"),
		ctx.Query("sortBy"),
		ctx.Query("limit"),
		ctx.Query("skip"),
	)

	tasks, err := h.taskUseCase.List(requestCtx, owner.ID, filter)
	if err != nil {
		return respondError(ctx, log, "listing tasks", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewTaskListResponse(tasks)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Get возвращает задачу по ID, если она принадлежит текущему пользователю.
func (h *Handler) Get(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerGet)

	owner, err := currentUser(ctx)
	if err != nil {
		return err
	}

	task, err := h.taskUseCase.Get(requestCtx, owner.ID, ctx.Params("id"))
	if err != nil {
		return respondError(ctx, log, "fetching task", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewTaskResponse(task)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Patch применяет изменения к задаче текущего пользователя.
// Запросы с ключами вне разрешенного набора отклоняются целиком.
func (h *Handler) Patch(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerPatch)

	owner, err := currentUser(ctx)
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
		if _, ok := allowedTaskFields[field]; !ok {
			return fmt.Errorf("validating fields: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": ErrorInvalidUpdates,
			}))
		}
	}

	var update api.TaskUpdate
	if err := json.Unmarshal(ctx.Body(), &update); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return fmt.Errorf("parsing update: %w", ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": ErrorInvalidRequest,
		}))
	}

	task, err := h.taskUseCase.Update(requestCtx, owner.ID, ctx.Params("id"), update)
	if err != nil {
		return respondError(ctx, log, "updating task", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewTaskResponse(task)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// Delete удаляет задачу текущего пользователя и возвращает удаленную запись.
func (h *Handler) Delete(ctx fiber.Ctx) error {
	requestCtx := ctx.Context()
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerDelete)

	owner, err := currentUser(ctx)
	if err != nil {
		return err
	}

	task, err := h.taskUseCase.Delete(requestCtx, owner.ID, ctx.Params("id"))
	if err != nil {
		return respondError(ctx, log, "deleting task", err)
	}

	if err := ctx.Status(http.StatusOK).JSON(dto.NewTaskResponse(task)); err != nil {
		return fmt.Errorf("sending response: %w", err)
	}
	return nil
}

// currentUser извлекает аутентифицированного пользователя из Locals.
func currentUser(ctx fiber.Ctx) (*entities.User, error) {
	user, ok := ctx.Locals(middleware.ContextKeyUser).(*entities.User)
	if !ok {
		return nil, fmt.Errorf("%s: %w", ErrorMissingUserContext,
			ctx.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": middleware.MessageUnauthorized,
			}))
	}
	return user, nil
}

// respondError переводит доменные ошибки в HTTP статусы.
func respondError(ctx fiber.Ctx, log *logger.Logger, action string, err error) error {
	requestCtx := ctx.Context()

	switch {
	case errors.Is(err, entities.ErrEmptyDescription):
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": entities.ErrEmptyDescription.Error(),
		}))
	case errors.Is(err, entities.ErrTaskNotFound), errors.Is(err, entities.ErrUserNotFound):
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusNotFound).Send(nil))
	default:
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return fmt.Errorf("%s: %w", action, ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": ErrorFailedToServeRequest,
		}))
	}
}
