package notification

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/baterx-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для уведомлений
func (s *NotificationService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/notifications")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Get("/", s.GetNotifications)
	api.Put("/read-all", s.MarkAllRead)
	api.Put("/:id/read", s.MarkRead)
	api.Delete("/:id", s.DeleteNotification)
}
