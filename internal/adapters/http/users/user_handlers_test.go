package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpServer "gotasker/internal/adapters/http"
	"gotasker/internal/adapters/http/middleware"
	"gotasker/internal/adapters/http/users"
	"gotasker/internal/domain/entities"
	"gotasker/internal/domain/services"
	"gotasker/internal/ports/api"
)

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Register(ctx context.Context, name, email, password string, age int) (*services.Credentials, error) {
	args := m.Called(ctx, name, email, password, age)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Credentials), args.Error(1)
}

func (m *mockAuthUseCase) Login(ctx context.Context, email, password string) (*services.Credentials, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Credentials), args.Error(1)
}

func (m *mockAuthUseCase) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAuthUseCase) Logout(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *mockAuthUseCase) LogoutAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockUserUseCase struct {
	mock.Mock
}

func (m *mockUserUseCase) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserUseCase) UpdateProfile(ctx context.Context, userID string, update api.ProfileUpdate) (*entities.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserUseCase) DeleteAccount(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserUseCase) UploadAvatar(ctx context.Context, userID, filename string, data []byte) error {
	return m.Called(ctx, userID, filename, data).Error(0)
}

func (m *mockUserUseCase) DeleteAvatar(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserUseCase) GetAvatar(ctx context.Context, userID string) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// newUserApp собирает приложение с маршрутами учетных записей. Непустой
// user подставляется в Locals вместо промежуточного ПО аутентификации.
func newUserApp(authUseCase *mockAuthUseCase, userUseCase *mockUserUseCase, user *entities.User) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: httpServer.NewErrorHandler(),
	})

	if user != nil {
		app.Use(func(ctx fiber.Ctx) error {
			ctx.Locals(middleware.ContextKeyUser, user)
			ctx.Locals(middleware.ContextKeyToken, "live-token")
			return ctx.Next()
		})
	}

	handler := users.NewHandler(authUseCase, userUseCase)
	app.Post("/users", handler.Register)
	app.Post("/users/login", handler.Login)
	app.Get("/users/:id/avatar", handler.GetAvatar)
	app.Post("/users/logout", handler.Logout)
	app.Post("/users/logoutAll", handler.LogoutAll)
	app.Get("/users/me", handler.GetProfile)
	app.Patch("/users/me", handler.PatchProfile)
	app.Delete("/users/me", handler.DeleteMe)
	app.Post("/users/me/avatar", handler.UploadAvatar)
	app.Delete("/users/me/avatar", handler.DeleteAvatar)

	return app
}

func testUser() *entities.User {
	now := time.Now().UTC()
	return &entities.User{
		ID:        "user-1",
		Name:      "Alice",
		Email:     "alice@example.com",
		Age:       30,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeMap(t *testing.T, body io.Reader) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload
}

func TestUserHandlerRegister(t *testing.T) {
	t.Run("успешная регистрация возвращает профиль и токен", func(t *testing.T) {
		user := testUser()
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Register", mock.Anything, "Alice", "alice@example.com", "long password", 30).
			Return(&services.Credentials{User: user, Token: "fresh-token"}, nil)

		app := newUserApp(authUseCase, new(mockUserUseCase), nil)
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/users",
			`{"name":"Alice","email":"alice@example.com","password":"long password","age":30}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		payload := decodeMap(t, resp.Body)
		assert.Equal(t, "fresh-token", payload["token"])

		profile, ok := payload["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, user.ID, profile["_id"])
		assert.Equal(t, user.Email, profile["email"])
		assert.NotContains(t, profile, "password")
		assert.NotContains(t, profile, "password_hash")
		assert.NotContains(t, profile, "avatar")
		authUseCase.AssertExpectations(t)
	})

	t.Run("ошибка валидации возвращается с описанием", func(t *testing.T) {
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Register", mock.Anything, "Alice", "not-an-email", "long password", 0).
			Return(nil, entities.ErrInvalidEmail)

		app := newUserApp(authUseCase, new(mockUserUseCase), nil)
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/users",
			`{"name":"Alice","email":"not-an-email","password":"long password"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, entities.ErrInvalidEmail.Error(), decodeMap(t, resp.Body)["error"])
	})

	t.Run("занятый email дает 400", func(t *testing.T) {
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Register", mock.Anything, "Alice", "alice@example.com", "long password", 0).
			Return(nil, services.ErrEmailAlreadyExists)

		app := newUserApp(authUseCase, new(mockUserUseCase), nil)
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/users",
			`{"name":"Alice","email":"alice@example.com","password":"long password"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, services.ErrEmailAlreadyExists.Error(), decodeMap(t, resp.Body)["error"])
	})
}

func TestUserHandlerLogin(t *testing.T) {
	t.Run("успешный вход возвращает свежий токен", func(t *testing.T) {
		user := testUser()
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Login", mock.Anything, "alice@example.com", "long password").
			Return(&services.Credentials{User: user, Token: "fresh-token"}, nil)

		app := newUserApp(authUseCase, new(mockUserUseCase), nil)
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/users/login",
			`{"email":"alice@example.com","password":"long password"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "fresh-token", decodeMap(t, resp.Body)["token"])
	})

	t.Run("любая причина отказа дает одинаковый ответ", func(t *testing.T) {
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Login", mock.Anything, "alice@example.com", "wrong password").
			Return(nil, services.ErrInvalidCredentials)

		app := newUserApp(authUseCase, new(mockUserUseCase), nil)
		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/users/login",
			`{"email":"alice@example.com","password":"wrong password"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, users.ErrorUnableToLogin, decodeMap(t, resp.Body)["error"])
	})
}

func TestUserHandlerSessions(t *testing.T) {
	t.Run("выход отзывает токен текущей сессии", func(t *testing.T) {
		user := testUser()
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("Logout", mock.Anything, user.ID, "live-token").Return(nil)

		app := newUserApp(authUseCase, new(mockUserUseCase), user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/users/logout", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
		authUseCase.AssertExpectations(t)
	})

	t.Run("выход из всех сессий", func(t *testing.T) {
		user := testUser()
		authUseCase := new(mockAuthUseCase)
		authUseCase.On("LogoutAll", mock.Anything, user.ID).Return(nil)

		app := newUserApp(authUseCase, new(mockUserUseCase), user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/users/logoutAll", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		authUseCase.AssertExpectations(t)
	})
}

func TestUserHandlerProfile(t *testing.T) {
	t.Run("профиль текущего пользователя без секретов", func(t *testing.T) {
		user := testUser()

		app := newUserApp(new(mockAuthUseCase), new(mockUserUseCase), user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/users/me", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		payload := decodeMap(t, resp.Body)
		assert.Equal(t, user.ID, payload["_id"])
		assert.NotContains(t, payload, "password")
		assert.NotContains(t, payload, "password_hash")
	})

	t.Run("неизвестное поле отклоняет запрос целиком", func(t *testing.T) {
		user := testUser()
		userUseCase := new(mockUserUseCase)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(jsonRequest(fiber.MethodPatch, "/users/me", `{"name":"Bob","_id":"intruder"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, users.ErrorInvalidUpdates, decodeMap(t, resp.Body)["error"])
		userUseCase.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("разрешенные поля применяются", func(t *testing.T) {
		user := testUser()
		name := "Bob"
		age := 31
		updated := testUser()
		updated.Name = name
		updated.Age = age

		userUseCase := new(mockUserUseCase)
		userUseCase.On("UpdateProfile", mock.Anything, user.ID, api.ProfileUpdate{Name: &name, Age: &age}).
			Return(updated, nil)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(jsonRequest(fiber.MethodPatch, "/users/me", `{"name":"Bob","age":31}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Bob", decodeMap(t, resp.Body)["name"])
		userUseCase.AssertExpectations(t)
	})

	t.Run("удаление учетной записи возвращает удаленный профиль", func(t *testing.T) {
		user := testUser()
		userUseCase := new(mockUserUseCase)
		userUseCase.On("DeleteAccount", mock.Anything, user).Return(nil)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/users/me", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, user.ID, decodeMap(t, resp.Body)["_id"])
		userUseCase.AssertExpectations(t)
	})
}

func multipartAvatarRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUserHandlerAvatar(t *testing.T) {
	t.Run("загрузка аватара", func(t *testing.T) {
		user := testUser()
		raw := []byte("jpeg-bytes")
		userUseCase := new(mockUserUseCase)
		userUseCase.On("UploadAvatar", mock.Anything, user.ID, "photo.jpg", raw).Return(nil)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(multipartAvatarRequest(t, "/users/me/avatar", "photo.jpg", raw))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		userUseCase.AssertExpectations(t)
	})

	t.Run("запрос без файла дает 400", func(t *testing.T) {
		user := testUser()
		userUseCase := new(mockUserUseCase)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/users/me/avatar", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		userUseCase.AssertNotCalled(t, "UploadAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("неподдерживаемый формат дает 400", func(t *testing.T) {
		user := testUser()
		userUseCase := new(mockUserUseCase)
		userUseCase.On("UploadAvatar", mock.Anything, user.ID, "notes.pdf", mock.Anything).
			Return(entities.ErrUnsupportedImage)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(multipartAvatarRequest(t, "/users/me/avatar", "notes.pdf", []byte("pdf-bytes")))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, entities.ErrUnsupportedImage.Error(), decodeMap(t, resp.Body)["error"])
	})

	t.Run("публичная выдача аватара", func(t *testing.T) {
		avatar := []byte("png-bytes")
		userUseCase := new(mockUserUseCase)
		userUseCase.On("GetAvatar", mock.Anything, "user-1").Return(avatar, nil)

		app := newUserApp(new(mockAuthUseCase), userUseCase, nil)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/users/user-1/avatar", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, avatar, body)
	})

	t.Run("отсутствующий аватар дает 404 без тела", func(t *testing.T) {
		userUseCase := new(mockUserUseCase)
		userUseCase.On("GetAvatar", mock.Anything, "user-404").
			Return(nil, entities.ErrAvatarNotFound)

		app := newUserApp(new(mockAuthUseCase), userUseCase, nil)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/users/user-404/avatar", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("удаление аватара", func(t *testing.T) {
		user := testUser()
		userUseCase := new(mockUserUseCase)
		userUseCase.On("DeleteAvatar", mock.Anything, user.ID).Return(nil)

		app := newUserApp(new(mockAuthUseCase), userUseCase, user)
		resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/users/me/avatar", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		userUseCase.AssertExpectations(t)
	})
}
