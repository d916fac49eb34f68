package cache_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasker/internal/adapters/cache"
	"gotasker/internal/config"
	"gotasker/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()

	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func mockRedisServer(t *testing.T) (*miniredis.Miniredis, *config.RedisConfig) {
	t.Helper()

	server := miniredis.RunT(t)

	host, portString, ok := strings.Cut(server.Addr(), ":")
	require.True(t, ok)
	port, err := strconv.Atoi(portString)
	require.NoError(t, err)

	cfg := &config.RedisConfig{
		Host:      host,
		Port:      port,
		AvatarTTL: 15 * time.Minute,
	}
	return server, cfg
}

func TestNewRedisCache(t *testing.T) {
	ctx := testContext(t)

	t.Run("успешное подключение и закрытие", func(t *testing.T) {
		_, cfg := mockRedisServer(t)

		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.NoError(t, err)
		require.NotNil(t, redisCache)
		require.NoError(t, redisCache.Close())
	})

	t.Run("недоступный сервер возвращает ошибку", func(t *testing.T) {
		cfg := &config.RedisConfig{Host: "127.0.0.1", Port: 1}

		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.Error(t, err)
		assert.Nil(t, redisCache)
	})
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	ctx := testContext(t)

	t.Run("промах кэша не является ошибкой", func(t *testing.T) {
		_, cfg := mockRedisServer(t)
		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.NoError(t, err)
		defer redisCache.Close()

		value, err := redisCache.Get(ctx, "avatar:missing")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("запись и чтение значения", func(t *testing.T) {
		_, cfg := mockRedisServer(t)
		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.NoError(t, err)
		defer redisCache.Close()

		payload := []byte("png-bytes")
		require.NoError(t, redisCache.Set(ctx, "avatar:user-1", payload, time.Minute))

		value, err := redisCache.Get(ctx, "avatar:user-1")
		require.NoError(t, err)
		assert.Equal(t, payload, value)
	})

	t.Run("нулевое время жизни заменяется значением по умолчанию", func(t *testing.T) {
		server, cfg := mockRedisServer(t)

		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.NoError(t, err)
		defer redisCache.Close()

		require.NoError(t, redisCache.Set(ctx, "avatar:user-1", []byte("png-bytes"), 0))
		assert.Equal(t, cfg.AvatarTTL, server.TTL("avatar:user-1"))
	})

	t.Run("удаление значения", func(t *testing.T) {
		_, cfg := mockRedisServer(t)
		redisCache, err := cache.NewRedisCache(ctx, cfg)
		require.NoError(t, err)
		defer redisCache.Close()

		require.NoError(t, redisCache.Set(ctx, "avatar:user-1", []byte("png-bytes"), time.Minute))
		require.NoError(t, redisCache.Delete(ctx, "avatar:user-1"))

		value, err := redisCache.Get(ctx, "avatar:user-1")
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}
