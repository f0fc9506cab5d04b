package cloudinary

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/baterx-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для загрузки изображений
func (s *CloudinaryService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/upload")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/params", s.GenerateUploadParams)
	api.Post("/", s.UploadImage)
	api.Delete("/*", s.DeleteImage)
}
