// Package entities определяет доменные сущности сервиса задач.
package entities

import (
	"errors"
	"time"
)

// Ошибки домена пользователя.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrNegativeAge         = errors.New("age must be a positive number")
	ErrPasswordTooShort    = errors.New("password must contain at least 7 characters")
	ErrPasswordForbidden   = errors.New("password must not contain the word 'password'")
	ErrUserNotFound        = errors.New("user not found")
	ErrAvatarNotFound      = errors.New("avatar not found")
	ErrAvatarTooLarge      = errors.New("avatar exceeds maximum allowed size")
	ErrUnsupportedImage    = errors.New("avatar must be a jpg, jpeg or png file")
	ErrInvalidUpdateFields = errors.New("invalid updates")
)

// User представляет основную сущность домена пользователя.
// Avatar хранится отдельно и загружается только по явному запросу.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
