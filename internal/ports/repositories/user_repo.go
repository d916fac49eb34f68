// Package repositories определяет интерфейсы слоя хранения.
package repositories

import (
	"context"

	"gotasker/internal/domain/entities"
)

// UserRepository определяет интерфейс для операций хранения пользователей.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	Update(ctx context.Context, user *entities.User) (*entities.User, error)

	UpdateAvatar(ctx context.Context, id string, avatar []byte) error

	FindAvatar(ctx context.Context, id string) ([]byte, error)

	Delete(ctx context.Context, id string) error
}
