package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gotasker/internal/domain/services"
	"gotasker/internal/ports/repositories"
	"gotasker/pkg/logger"
)

// TokenRepository реализует интерфейс repositories.TokenRepository для работы с Postgres.
type TokenRepository struct {
	pool PgxPoolInterface
}

// NewTokenRepository создает новый экземпляр репозитория токенов сеанса.
func NewTokenRepository(pool PgxPoolInterface) repositories.TokenRepository {
	return &TokenRepository{pool: pool}
}

// Store сохраняет новый токен сеанса в наборе живых токенов пользователя.
func (r *TokenRepository) Store(ctx context.Context, token *services.SessionToken) error {
	log := logger.Log(ctx).With(zap.String("repository", "token"), zap.String("method", "Store"))

	query := `
        INSERT INTO session_tokens (user_id, token)
        VALUES ($1, $2)
    `

	_, err := r.pool.Exec(ctx, query, token.UserID, token.Token)
	if err != nil {
		log.Error(ctx, "error storing session token", zap.Error(err))
		return fmt.Errorf("error storing session token: %w", err)
	}

	return nil
}

// Exists проверяет, присутствует ли токен в наборе живых токенов пользователя.
func (r *TokenRepository) Exists(ctx context.Context, userID, token string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "token"), zap.String("method", "Exists"))

	query := `
        SELECT EXISTS (
            SELECT 1 FROM session_tokens
            WHERE user_id = $1 AND token = $2
        )
    `

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, token).Scan(&exists); err != nil {
		log.Error(ctx, "error checking session token", zap.Error(err))
		return false, fmt.Errorf("error checking session token: %w", err)
	}

	return exists, nil
}

// Revoke удаляет ровно один совпадающий токен пользователя.
// Отзыв уже отозванного токена не считается ошибкой.
func (r *TokenRepository) Revoke(ctx context.Context, userID, token string) error {
	log := logger.Log(ctx).With(zap.String("repository", "token"), zap.String("method", "Revoke"))

	query := `
        DELETE FROM session_tokens
        WHERE user_id = $1 AND token = $2
    `

	result, err := r.pool.Exec(ctx, query, userID, token)
	if err != nil {
		log.Error(ctx, "error revoking session token", zap.Error(err))
		return fmt.Errorf("error revoking session token: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "token not found for revocation")
	}

	return nil
}

// RevokeAll удаляет все токены пользователя.
func (r *TokenRepository) RevokeAll(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(
		zap.String("repository", "token"),
		zap.String("method", "RevokeAll"),
		zap.String("userID", userID),
	)

	query := `
        DELETE FROM session_tokens
        WHERE user_id = $1
    `

	result, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		log.Error(ctx, "error revoking all user tokens", zap.Error(err))
		return fmt.Errorf("error revoking all user tokens: %w", err)
	}

	log.Info(ctx, "all user tokens revoked", zap.Int64("count", result.RowsAffected()))
	return nil
}
