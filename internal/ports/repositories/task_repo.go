package repositories

import (
	"context"

	"gotasker/internal/domain/entities"
)

// Канонические имена сортируемых полей списка задач.
const (
	SortByCreatedAt   = "createdAt"
	SortByUpdatedAt   = "updatedAt"
	SortByDescription = "description"
	SortByCompleted   = "completed"
)

// TaskFilter описывает параметры выборки списка задач.
// Limit <= 0 означает отсутствие ограничения, Skip < 0 трактуется как 0.
type TaskFilter struct {
	Completed *bool
	SortBy    string
	SortDesc  bool
	Limit     int
	Skip      int
}

// TaskRepository определяет интерфейс для операций хранения задач.
// Все операции чтения и изменения ограничены владельцем задачи.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)

	FindByID(ctx context.Context, taskID, ownerID string) (*entities.Task, error)

	List(ctx context.Context, ownerID string, filter TaskFilter) ([]*entities.Task, error)

	Update(ctx context.Context, task *entities.Task) (*entities.Task, error)

	Delete(ctx context.Context, taskID, ownerID string) error

	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
