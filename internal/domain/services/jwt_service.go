package services

import (
	"errors"
	"time"
)

// Ошибки, связанные с JWT токенами.
var (
	ErrInvalidJWTToken    = errors.New("invalid JWT token")
	ErrGeneratingJWTToken = errors.New("failed to generate JWT token")
)

// JWTConfig содержит настройки для JWT сервиса.
type JWTConfig struct {
	SecretKey []byte
}

// JWTClaims определяет структуру данных JWT токена.
// Токены намеренно не содержат срока действия: действительность
// определяется наличием записи в наборе живых токенов пользователя.
type JWTClaims struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"iat"`
}
