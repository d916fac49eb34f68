// Package http содержит компоненты для HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"

	"gotasker/internal/adapters/http/middleware"
	"gotasker/internal/adapters/http/tasks"
	"gotasker/internal/adapters/http/users"
	"gotasker/internal/ports/api"
)

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, authUseCase api.AuthUseCase, userUseCase api.UserUseCase, taskUseCase api.TaskUseCase) {
	userHandler := users.NewHandler(authUseCase, userUseCase)
	taskHandler := tasks.NewHandler(taskUseCase)

	// Middleware для всех запросов.
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	requireAuth := middleware.NewAuthMiddleware(authUseCase)

	// Публичные маршруты.
	app.Post("/users", userHandler.Register)
	app.Post("/users/login", userHandler.Login)
	app.Get("/users/:id/avatar", userHandler.GetAvatar)

	// Сессии.
	app.Post("/users/logout", userHandler.Logout, requireAuth)
	app.Post("/users/logoutAll", userHandler.LogoutAll, requireAuth)

	// Профиль текущего пользователя.
	app.Get("/users/me", userHandler.GetProfile, requireAuth)
	app.Patch("/users/me", userHandler.PatchProfile, requireAuth)
	app.Delete("/users/me", userHandler.DeleteMe, requireAuth)
	app.Post("/users/me/avatar", userHandler.UploadAvatar, requireAuth)
	app.Delete("/users/me/avatar", userHandler.DeleteAvatar, requireAuth)

	// Задачи.
	taskRoutes := app.Group("/tasks")
	taskRoutes.Use(requireAuth)
	taskRoutes.Post("/", taskHandler.Create)
	taskRoutes.Get("/", taskHandler.List)
	taskRoutes.Get("/:id", taskHandler.Get)
	taskRoutes.Patch("/:id", taskHandler.Patch)
	taskRoutes.Delete("/:id", taskHandler.Delete)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
