package v1

import (
	"github.com/gofiber/fiber/v2"

	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/middleware"
)

func RegisterRoutes(app *fiber.App) {
	// Auth
	app.Post("/register", handlers.Register)
	app.Post("/token", handlers.IssueToken)

	// Task
	taskRoutes := app.Group("/tasks", middleware.UseToken)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)

	// Photos
	taskRoutes.Post("/:id/photos/", handlers.UploadPhoto)
	taskRoutes.Get("/:id/photos/", handlers.ListPhotos)
}
