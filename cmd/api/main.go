package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/services/auth"
	"github.com/rajivgeraev/baterx-api/internal/services/cloudinary"
	"github.com/rajivgeraev/baterx-api/internal/services/item"
	"github.com/rajivgeraev/baterx-api/internal/services/notification"
	"github.com/rajivgeraev/baterx-api/internal/services/trade"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Применяем миграции
	if err := db.RunMigrations(cfg, "migrations"); err != nil {
		log.Fatalf("❌ Ошибка при применении миграций: %v", err)
	}

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "BaterX API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	itemService := item.NewItemService(cfg)
	tradeService := trade.NewTradeService(cfg)
	notificationService := notification.NewNotificationService(cfg)

	cloudinaryService, err := cloudinary.NewCloudinaryService(cfg)
	if err != nil {
		log.Fatalf("❌ Ошибка при инициализации Cloudinary: %v", err)
	}

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	itemService.SetupRoutes(app)
	tradeService.SetupRoutes(app)
	notificationService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)

	// Запускаем сервер
	log.Printf("✅ BaterX API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
