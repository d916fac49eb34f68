// Package api определяет порты уровня приложения.
package api

import (
	"context"

	"gotasker/internal/domain/entities"
	"gotasker/internal/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, name, email, password string, age int) (*services.Credentials, error)

	Login(ctx context.Context, email, password string) (*services.Credentials, error)

	// Authenticate проверяет подпись токена и его присутствие в наборе
	// живых токенов пользователя и возвращает действующего пользователя.
	Authenticate(ctx context.Context, token string) (*entities.User, error)

	Logout(ctx context.Context, userID, token string) error

	LogoutAll(ctx context.Context, userID string) error
}
