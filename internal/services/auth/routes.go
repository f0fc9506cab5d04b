package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/rajivgeraev/baterx-api/internal/middleware"
)

// SetupRoutes регистрирует маршруты в Fiber
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/register", s.RegisterHandler)
	app.Post("/api/auth/login", s.LoginHandler)
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)
	app.Post("/api/auth/forgot-password", s.ForgotPasswordHandler)
	app.Post("/api/auth/reset-password", s.ResetPasswordHandler)

	// Защищенные маршруты. Middleware вешается на конкретные пути,
	// чтобы не перехватывать публичные маршруты других сервисов под /api
	authRequired := middleware.AuthMiddleware(s.jwtService)

	app.Post("/api/auth/logout", s.LogoutHandler, authRequired)
	app.Get("/api/profile", s.GetProfileHandler, authRequired)
	app.Put("/api/profile", s.UpdateProfileHandler, authRequired)
}
