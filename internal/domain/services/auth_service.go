// Package services содержит доменные модели и ошибки сервисного слоя.
package services

import (
	"errors"
	"time"

	"gotasker/internal/domain/entities"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials = errors.New("unable to login")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrUnauthenticated    = errors.New("please authenticate")
	ErrTokenIssueFailed   = errors.New("failed to issue session token")
)

// SessionToken представляет живой токен сеанса пользователя.
// Наличие записи делает токен действительным; отзыв удаляет запись.
type SessionToken struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
}

// Credentials представляет результат успешной аутентификации:
// пользователь и свежевыпущенный токен сеанса.
type Credentials struct {
	User  *entities.User
	Token string
}
