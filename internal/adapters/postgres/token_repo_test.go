package postgres_test

import (
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasker/internal/adapters/postgres"
	"gotasker/internal/domain/services"
)

func TestTokenRepository_Store(t *testing.T) {
	ctx := testContext(t)

	session := &services.SessionToken{
		UserID: "user-1",
		Token:  "signed-token",
	}

	t.Run("успешное сохранение токена", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("INSERT INTO session_tokens").
			WithArgs(session.UserID, session.Token).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := postgres.NewTokenRepository(mock)
		require.NoError(t, repo.Store(ctx, session))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка базы данных при сохранении", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection refused")
		mock.ExpectExec("INSERT INTO session_tokens").
			WithArgs(session.UserID, session.Token).
			WillReturnError(dbErr)

		repo := postgres.NewTokenRepository(mock)
		err = repo.Store(ctx, session)
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_Exists(t *testing.T) {
	ctx := testContext(t)

	t.Run("токен присутствует в живом наборе", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("user-1", "signed-token").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		repo := postgres.NewTokenRepository(mock)
		exists, err := repo.Exists(ctx, "user-1", "signed-token")
		require.NoError(t, err)
		assert.True(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("токен отсутствует", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("user-1", "revoked-token").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		repo := postgres.NewTokenRepository(mock)
		exists, err := repo.Exists(ctx, "user-1", "revoked-token")
		require.NoError(t, err)
		assert.False(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка базы данных при проверке", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection refused")
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("user-1", "signed-token").
			WillReturnError(dbErr)

		repo := postgres.NewTokenRepository(mock)
		exists, err := repo.Exists(ctx, "user-1", "signed-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.False(t, exists)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_Revoke(t *testing.T) {
	ctx := testContext(t)

	t.Run("успешный отзыв одного токена", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("WHERE user_id = \\$1 AND token = \\$2").
			WithArgs("user-1", "signed-token").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewTokenRepository(mock)
		require.NoError(t, repo.Revoke(ctx, "user-1", "signed-token"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("повторный отзыв не считается ошибкой", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("WHERE user_id = \\$1 AND token = \\$2").
			WithArgs("user-1", "already-revoked").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewTokenRepository(mock)
		require.NoError(t, repo.Revoke(ctx, "user-1", "already-revoked"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка базы данных при отзыве", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection refused")
		mock.ExpectExec("WHERE user_id = \\$1 AND token = \\$2").
			WithArgs("user-1", "signed-token").
			WillReturnError(dbErr)

		repo := postgres.NewTokenRepository(mock)
		err = repo.Revoke(ctx, "user-1", "signed-token")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_RevokeAll(t *testing.T) {
	ctx := testContext(t)

	t.Run("отзыв всех токенов пользователя", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM session_tokens").
			WithArgs("user-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 3))

		repo := postgres.NewTokenRepository(mock)
		require.NoError(t, repo.RevokeAll(ctx, "user-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("отзыв при отсутствии токенов", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("DELETE FROM session_tokens").
			WithArgs("user-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewTokenRepository(mock)
		require.NoError(t, repo.RevokeAll(ctx, "user-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка базы данных при массовом отзыве", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection refused")
		mock.ExpectExec("DELETE FROM session_tokens").
			WithArgs("user-1").
			WillReturnError(dbErr)

		repo := postgres.NewTokenRepository(mock)
		err = repo.RevokeAll(ctx, "user-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
