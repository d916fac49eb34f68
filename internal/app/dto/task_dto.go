package dto

import (
	"time"

	"gotasker/internal/domain/entities"
)

// CreateTaskRequest содержит данные для создания задачи.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TaskResponse содержит публичное представление задачи.
type TaskResponse struct {
	ID          string    `json:"_id"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTaskResponse строит публичное представление задачи.
func NewTaskResponse(task *entities.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Owner:       task.OwnerID,
		Description: task.Description,
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// NewTaskListResponse строит список представлений задач.
func NewTaskListResponse(tasks []*entities.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, NewTaskResponse(task))
	}
	return responses
}
