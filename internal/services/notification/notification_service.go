package notification

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/models"
	"github.com/rajivgeraev/baterx-api/internal/store"
	"github.com/rajivgeraev/baterx-api/internal/utils"
)

// NotificationService представляет сервис для работы с уведомлениями
type NotificationService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewNotificationService создает новый экземпляр NotificationService
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetNotifications возвращает уведомления текущего пользователя.
// При сбое чтения отдаем пустой список вместо ошибки
func (s *NotificationService) GetNotifications(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	filter := store.NotificationFilter{UserID: &userID}
	if c.Query("unread") == "true" {
		filter.Unread = true
	}

	notifications, err := store.QueryNotifications(filter)
	if err != nil {
		log.Printf("Ошибка запроса уведомлений: %v", err)
		notifications = []*models.Notification{}
	}

	unreadCount := 0
	for _, n := range notifications {
		if !n.IsRead {
			unreadCount++
		}
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unreadCount,
	})
}

// MarkRead отмечает уведомление прочитанным. Чужие уведомления
// недоступны
func (s *NotificationService) MarkRead(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID уведомления"})
	}

	n, err := store.GetNotificationByID(notificationID)
	if err != nil {
		log.Printf("Ошибка получения уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения уведомления"})
	}
	if n == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Уведомление не найдено"})
	}
	if n.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Это не ваше уведомление"})
	}

	if err := store.MarkNotificationRead(notificationID); err != nil {
		log.Printf("Ошибка отметки уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления уведомления"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkAllRead отмечает все уведомления пользователя прочитанными
func (s *NotificationService) MarkAllRead(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	if err := store.MarkAllNotificationsRead(userID); err != nil {
		log.Printf("Ошибка отметки уведомлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления уведомлений"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteNotification удаляет уведомление текущего пользователя
func (s *NotificationService) DeleteNotification(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	notificationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID уведомления"})
	}

	n, err := store.GetNotificationByID(notificationID)
	if err != nil {
		log.Printf("Ошибка получения уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения уведомления"})
	}
	if n == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Уведомление не найдено"})
	}
	if n.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Это не ваше уведомление"})
	}

	if err := store.DeleteNotification(notificationID); err != nil {
		log.Printf("Ошибка удаления уведомления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления уведомления"})
	}

	return c.JSON(fiber.Map{"success": true})
}
