package repositories

import (
	"context"

	"gotasker/internal/domain/services"
)

// TokenRepository определяет интерфейс для управления набором живых токенов сеанса.
type TokenRepository interface {
	Store(ctx context.Context, token *services.SessionToken) error

	Exists(ctx context.Context, userID, token string) (bool, error)

	Revoke(ctx context.Context, userID, token string) error

	RevokeAll(ctx context.Context, userID string) error
}
