package entities

import (
	"errors"
	"time"
)

// Ошибки домена задач.
var (
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrTaskNotFound     = errors.New("task not found")
)

// Task представляет задачу, принадлежащую ровно одному пользователю.
type Task struct {
	ID          string
	OwnerID     string
	Description string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask создает новую задачу для указанного владельца.
func NewTask(ownerID, description string, completed bool) *Task {
	now := time.Now()
	return &Task{
		OwnerID:     ownerID,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
