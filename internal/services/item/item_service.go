package item

import (
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/models"
	"github.com/rajivgeraev/baterx-api/internal/store"
	"github.com/rajivgeraev/baterx-api/internal/utils"
)

// RequestImage представляет изображение в запросе создания объявления
type RequestImage struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"public_id"`
}

// itemPayload — тело запроса создания/обновления объявления
type itemPayload struct {
	Title           string         `json:"title" validate:"required"`
	Description     string         `json:"description" validate:"required"`
	Category        string         `json:"category" validate:"required"`
	Condition       string         `json:"condition" validate:"required"`
	Value           float64        `json:"value"`
	Location        string         `json:"location"`
	TradePreference string         `json:"trade_preference"`
	Images          []RequestImage `json:"images" validate:"required,min=1,dive"`
}

// ItemService представляет сервис для работы с объявлениями
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	validate   *validator.Validate
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		validate:   validator.New(),
	}
}

// CreateItem обрабатывает создание нового объявления
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var payload itemPayload
	if err := c.Bind().Body(&payload); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Валидация до любого похода в базу
	if err := s.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Заполните обязательные поля и добавьте хотя бы одно изображение"})
	}

	if !models.ValidConditions[payload.Condition] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое состояние вещи"})
	}

	// Профиль нужен для денормализованного снимка владельца
	owner, err := store.GetUserByID(userID)
	if err != nil {
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if owner == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Пользователь не найден"})
	}

	item := models.NewItem(owner, payload.Title, payload.Description, payload.Category,
		payload.Condition, payload.Value, payload.Location, payload.TradePreference)

	for _, img := range payload.Images {
		item.Images = append(item.Images, models.ItemImage{URL: img.URL, PublicID: img.PublicID})
	}

	if err := store.CreateItem(item); err != nil {
		log.Printf("Ошибка сохранения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения объявления"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item_id": item.ID,
		"item":    item,
		"message": "Объявление успешно создано",
	})
}

// GetPublicItems возвращает доступные для обмена объявления
// с фильтрами по категории и состоянию
func (s *ItemService) GetPublicItems(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	filter := store.ItemFilter{
		Category:  c.Query("category"),
		Condition: c.Query("condition"),
		Status:    models.ItemStatusAvailable,
		Limit:     limit,
		Offset:    offset,
	}

	items, err := store.QueryItems(filter)
	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}

	total, err := store.CountItems(filter)
	if err != nil {
		log.Printf("Ошибка подсчета объявлений: %v", err)
		// Игнорируем ошибку, просто не вернем общее количество
	}

	return c.JSON(fiber.Map{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetMyItems возвращает объявления текущего пользователя
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	filter := store.ItemFilter{
		OwnerID: &userID,
		Status:  c.Query("status"),
	}

	items, err := store.QueryItems(filter)
	if err != nil {
		log.Printf("Ошибка запроса объявлений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявлений"})
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает детальную информацию об объявлении
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	item, err := store.GetItemByID(itemID)
	if err != nil {
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
	}

	isOwner := false
	if userIDStr, ok := c.Locals("userID").(string); ok {
		if userID, err := uuid.Parse(userIDStr); err == nil {
			isOwner = item.UserID == userID
		}
	}

	return c.JSON(fiber.Map{
		"item":     item,
		"is_owner": isOwner,
	})
}

// UpdateItem домердживает только переданные поля объявления.
// Смена статуса проходит через проверку переходов
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	item, err := store.GetItemByID(itemID)
	if err != nil {
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
	}

	// Менять объявление может только владелец
	if item.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к редактированию этого объявления"})
	}

	var payload struct {
		Title           *string        `json:"title"`
		Description     *string        `json:"description"`
		Category        *string        `json:"category"`
		Condition       *string        `json:"condition"`
		Value           *float64       `json:"value"`
		Location        *string        `json:"location"`
		TradePreference *string        `json:"trade_preference"`
		Status          *string        `json:"status"`
		Images          []RequestImage `json:"images"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	fields := map[string]interface{}{}
	if payload.Title != nil {
		fields["title"] = *payload.Title
	}
	if payload.Description != nil {
		fields["description"] = *payload.Description
	}
	if payload.Category != nil {
		fields["category"] = *payload.Category
	}
	if payload.Condition != nil {
		if !models.ValidConditions[*payload.Condition] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимое состояние вещи"})
		}
		fields["condition"] = *payload.Condition
	}
	if payload.Value != nil {
		fields["value"] = *payload.Value
	}
	if payload.Location != nil {
		fields["location"] = *payload.Location
	}
	if payload.TradePreference != nil {
		fields["trade_preference"] = *payload.TradePreference
	}
	if payload.Status != nil {
		if err := models.TransitionItemStatus(item.Status, *payload.Status); err != nil {
			var te *models.TransitionError
			if errors.As(err, &te) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый переход статуса объявления"})
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		fields["status"] = *payload.Status
	}

	if len(fields) == 0 && payload.Images == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нет полей для обновления"})
	}

	if len(fields) > 0 {
		if err := store.UpdateItem(itemID, fields); err != nil {
			log.Printf("Ошибка обновления объявления: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления объявления"})
		}
	}

	if len(payload.Images) > 0 {
		images := make([]models.ItemImage, 0, len(payload.Images))
		for _, img := range payload.Images {
			images = append(images, models.ItemImage{URL: img.URL, PublicID: img.PublicID})
		}
		if err := store.ReplaceItemImages(itemID, images); err != nil {
			log.Printf("Ошибка обновления изображений: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления изображений"})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"item_id": itemID,
		"message": "Объявление успешно обновлено",
	})
}

// DeleteItem удаляет объявление. Удаление жесткое и не каскадное:
// обмены и уведомления со ссылками на вещь остаются
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	item, err := store.GetItemByID(itemID)
	if err != nil {
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
	}

	if item.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "У вас нет доступа к удалению этого объявления"})
	}

	if err := store.DeleteItem(itemID); err != nil {
		log.Printf("Ошибка удаления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка удаления объявления"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Объявление успешно удалено",
	})
}
