package item

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/baterx-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *ItemService) SetupRoutes(app *fiber.App) {
	// Публичный маршрут для просмотра доступных объявлений
	app.Get("/api/items", s.GetPublicItems)

	// Защищенные маршруты (требуют авторизации)
	api := app.Group("/api/items")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateItem)
	api.Get("/my", s.GetMyItems)
	api.Get("/:id", s.GetItem)
	api.Put("/:id", s.UpdateItem)
	api.Delete("/:id", s.DeleteItem)
}
