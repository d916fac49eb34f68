package api

import (
	"context"

	"gotasker/internal/domain/entities"
)

// ProfileUpdate описывает изменяемые поля профиля.
// nil означает, что поле не затронуто запросом.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// UserUseCase определяет основной порт для операций с профилем пользователя.
type UserUseCase interface {
	GetProfile(ctx context.Context, userID string) (*entities.User, error)

	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*entities.User, error)

	// DeleteAccount каскадно удаляет задачи и токены пользователя,
	// затем саму учетную запись.
	DeleteAccount(ctx context.Context, user *entities.User) error

	UploadAvatar(ctx context.Context, userID, filename string, data []byte) error

	DeleteAvatar(ctx context.Context, userID string) error

	GetAvatar(ctx context.Context, userID string) ([]byte, error)
}
