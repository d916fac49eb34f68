package api

import (
	"context"

	"gotasker/internal/domain/entities"
	"gotasker/internal/ports/repositories"
)

// TaskUpdate описывает изменяемые поля задачи.
// nil означает, что поле не затронуто запросом.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskUseCase определяет основной порт для операций с задачами.
// Все операции выполняются от имени владельца и не видят чужих задач.
type TaskUseCase interface {
	Create(ctx context.Context, ownerID, description string, completed bool) (*entities.Task, error)

	Get(ctx context.Context, ownerID, taskID string) (*entities.Task, error)

	List(ctx context.Context, ownerID string, filter repositories.TaskFilter) ([]*entities.Task, error)

	Update(ctx context.Context, ownerID, taskID string, update TaskUpdate) (*entities.Task, error)

	Delete(ctx context.Context, ownerID, taskID string) (*entities.Task, error)
}
