package services

import (
	"errors"
)

// Ошибки, связанные с паролями.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
)

// MinPasswordLength - минимальная длина пароля.
const MinPasswordLength = 7
