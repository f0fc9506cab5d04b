package trade

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/baterx-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для обменов
func (s *TradeService) SetupRoutes(app *fiber.App) {
	api := app.Group("/api/trades")
	api.Use(middleware.AuthMiddleware(s.jwtService))

	api.Post("/", s.CreateTrade)
	api.Get("/", s.GetMyTrades)
	api.Put("/:id/status", s.UpdateTradeStatus)
}
