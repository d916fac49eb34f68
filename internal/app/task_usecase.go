package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gotasker/internal/domain/entities"
	"gotasker/internal/ports/api"
	"gotasker/internal/ports/repositories"
	"gotasker/pkg/logger"
)

const (
	methodCreateTask = "CreateTask"
	methodGetTask    = "GetTask"
	methodListTasks  = "ListTasks"
	methodUpdateTask = "UpdateTask"
	methodDeleteTask = "DeleteTask"

	msgCreatingTask  = "creating task"
	msgTaskCreated   = "task created"
	msgFetchingTask  = "fetching task"
	msgListingTasks  = "listing tasks"
	msgTasksListed   = "tasks listed"
	msgUpdatingTask  = "updating task"
	msgTaskUpdated   = "task updated"
	msgDeletingTask  = "deleting task"
	msgTaskDeleted   = "task deleted"

	msgErrCreatingTask = "failed to create task"
	msgErrFindingTask  = "failed to find task"
	msgErrListingTasks = "failed to list tasks"
	msgErrUpdatingTask = "failed to update task"
	msgErrDeletingTask = "failed to delete task"

	errCtxValidatingTask = "validating task"
	errCtxCreatingTask   = "creating task"
	errCtxFindingTask    = "finding task"
	errCtxListingTasks   = "listing tasks"
	errCtxUpdatingTask   = "updating task"
	errCtxDeletingTask   = "deleting task"
)

// TaskUseCaseImpl реализует интерфейс TaskUseCase.
type TaskUseCaseImpl struct {
	taskRepo repositories.TaskRepository
}

// NewTaskUseCase создает новый экземпляр сервиса задач.
func NewTaskUseCase(taskRepo repositories.TaskRepository) api.TaskUseCase {
	return &TaskUseCaseImpl{taskRepo: taskRepo}
}

// Create создает задачу для владельца.
func (t *TaskUseCaseImpl) Create(ctx context.Context, ownerID, description string, completed bool) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateTask), zap.String("ownerID", ownerID))
	log.Debug(ctx, msgCreatingTask)

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingTask, entities.ErrEmptyDescription)
	}

	task, err := t.taskRepo.Create(ctx, entities.NewTask(ownerID, description, completed))
	if err != nil {
		log.Error(ctx, msgErrCreatingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingTask, err)
	}

	log.Info(ctx, msgTaskCreated, zap.String("taskID", task.ID))
	return task, nil
}

// Get возвращает задачу, принадлежащую владельцу.
// Чужие и несуществующие задачи неразличимы для вызывающего.
func (t *TaskUseCaseImpl) Get(ctx context.Context, ownerID, taskID string) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetTask), zap.String("ownerID", ownerID), zap.String("taskID", taskID))
	log.Debug(ctx, msgFetchingTask)

	task, err := t.taskRepo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		log.Debug(ctx, msgErrFindingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingTask, err)
	}

	return task, nil
}

// List возвращает задачи владельца с учетом фильтра, сортировки и пагинации.
func (t *TaskUseCaseImpl) List(ctx context.Context, ownerID string, filter repositories.TaskFilter) ([]*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("method", methodListTasks), zap.String("ownerID", ownerID))
	log.Debug(ctx, msgListingTasks)

	tasks, err := t.taskRepo.List(ctx, ownerID, filter)
	if err != nil {
		log.Error(ctx, msgErrListingTasks, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxListingTasks, err)
	}

	log.Debug(ctx, msgTasksListed, zap.Int("count", len(tasks)))
	return tasks, nil
}

// Update применяет изменения к задаче владельца.
func (t *TaskUseCaseImpl) Update(ctx context.Context, ownerID, taskID string, update api.TaskUpdate) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdateTask), zap.String("ownerID", ownerID), zap.String("taskID", taskID))
	log.Debug(ctx, msgUpdatingTask)

	task, err := t.taskRepo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		log.Debug(ctx, msgErrFindingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingTask, err)
	}

	if update.Description != nil {
		description := strings.TrimSpace(*update.Description)
		if description == "" {
			return nil, fmt.Errorf("%s: %w", errCtxValidatingTask, entities.ErrEmptyDescription)
		}
		task.Description = description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	updated, err := t.taskRepo.Update(ctx, task)
	if err != nil {
		log.Error(ctx, msgErrUpdatingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingTask, err)
	}

	log.Info(ctx, msgTaskUpdated)
	return updated, nil
}

// Delete удаляет задачу владельца и возвращает удаленную запись.
func (t *TaskUseCaseImpl) Delete(ctx context.Context, ownerID, taskID string) (*entities.Task, error) {
	log := logger.Log(ctx).With(zap.String("method", methodDeleteTask), zap.String("ownerID", ownerID), zap.String("taskID", taskID))
	log.Debug(ctx, msgDeletingTask)

	task, err := t.taskRepo.FindByID(ctx, taskID, ownerID)
	if err != nil {
		log.Debug(ctx, msgErrFindingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingTask, err)
	}

	if err := t.taskRepo.Delete(ctx, taskID, ownerID); err != nil {
		log.Error(ctx, msgErrDeletingTask, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxDeletingTask, err)
	}

	log.Info(ctx, msgTaskDeleted)
	return task, nil
}
