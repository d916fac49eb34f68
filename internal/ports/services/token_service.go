// Package services определяет интерфейсы внешних сервисов приложения.
package services

import (
	"context"
)

// TokenService определяет интерфейс для подписи и проверки токенов сеанса.
type TokenService interface {
	Issue(ctx context.Context, userID string) (string, error)

	Verify(ctx context.Context, token string) (string, error)
}
