// Package services содержит реализации сервисов аутентификации.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gotasker/internal/domain/services"
	svc "gotasker/internal/ports/services"
	"gotasker/pkg/logger"
)

// Константы для работы с JWT.
const (
	methodIssue  = "Issue"
	methodVerify = "Verify"

	msgIssuingToken   = "issuing session token"
	msgVerifyingToken = "verifying session token"
	msgTokenIssued    = "token issued successfully"
	msgTokenVerified  = "token verified successfully"
	msgInvalidToken   = "invalid token format"

	//nolint:gosec
	errSigningToken = "error signing token"
	//nolint:gosec
	errParsingToken      = "error parsing token"
	errCtxIssuingToken   = "issuing token"
	errCtxParsingToken   = "parsing token"
	errCtxVerifyingToken = "verifying token"
)

// ErrInvalidAlgorithm представляет статическую ошибку неверного алгоритма подписи.
var ErrInvalidAlgorithm = errors.New("invalid signing algorithm")

// Claims используется для адаптации между доменной моделью и библиотекой JWT.
// Срок действия намеренно не устанавливается: отзыв выполняется через
// набор живых токенов, а не через истечение подписи.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// ServiceJWT реализует интерфейс TokenService.
type ServiceJWT struct {
	config services.JWTConfig
}

// NewJWT создает новый экземпляр сервиса JWT.
func NewJWT(secretKey string) svc.TokenService {
	return &ServiceJWT{
		config: services.JWTConfig{
			SecretKey: []byte(secretKey),
		},
	}
}

// Issue подписывает токен сеанса, содержащий только идентификатор пользователя.
func (s *ServiceJWT) Issue(ctx context.Context, userID string) (string, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodIssue),
		zap.String("userID", userID),
	)
	log.Debug(ctx, msgIssuingToken)

	if len(s.config.SecretKey) == 0 {
		log.Error(ctx, "empty secret key provided")
		return "", fmt.Errorf("%s: %w: empty secret key", errCtxIssuingToken, services.ErrGeneratingJWTToken)
	}

	// Уникальный jti делает каждый выпуск различимым: без него два входа
	// в одну секунду дали бы байт-в-байт одинаковые токены, и отзыв
	// одного сеанса закрывал бы оба.
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Subject:  userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.config.SecretKey)
	if err != nil {
		log.Error(ctx, errSigningToken, zap.Error(err))
		return "", fmt.Errorf("%s: %w: %w", errCtxIssuingToken, services.ErrGeneratingJWTToken, err)
	}

	log.Debug(ctx, msgTokenIssued)
	return tokenString, nil
}

// Verify проверяет подпись токена и возвращает идентификатор пользователя.
func (s *ServiceJWT) Verify(ctx context.Context, tokenString string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", methodVerify))
	log.Debug(ctx, msgVerifyingToken)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAlgorithm, token.Header["alg"])
		}
		return s.config.SecretKey, nil
	})

	if err != nil {
		log.Debug(ctx, errParsingToken, zap.Error(err))
		return "", fmt.Errorf("%s: %w: %w", errCtxParsingToken, services.ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		log.Debug(ctx, msgInvalidToken)
		return "", fmt.Errorf("%s: %w", errCtxVerifyingToken, services.ErrInvalidJWTToken)
	}

	if claims.UserID == "" {
		log.Debug(ctx, "user_id claim is empty")
		return "", fmt.Errorf("%s: %w: empty user_id", errCtxVerifyingToken, services.ErrInvalidJWTToken)
	}

	log.Debug(ctx, msgTokenVerified, zap.String("userID", claims.UserID))
	return claims.UserID, nil
}
