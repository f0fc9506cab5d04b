package trade

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/models"
	"github.com/rajivgeraev/baterx-api/internal/store"
	"github.com/rajivgeraev/baterx-api/internal/utils"
)

// Причины отказа в создании предложения обмена
var (
	errTradeSelf        = errors.New("обмен с самим собой")
	errTradeUnavailable = errors.New("вещь недоступна для обмена")
	errTradeDuplicate   = errors.New("дубликат ожидающего предложения")
)

// checkTradeRequest проверяет допустимость нового предложения обмена.
// Вызывается до какой-либо записи в базу: отказ здесь гарантирует,
// что ни одна запись не создана
func checkTradeRequest(item *models.Item, requesterID uuid.UUID, pendingCount int) error {
	if item.UserID == requesterID {
		return errTradeSelf
	}
	if item.Status != models.ItemStatusAvailable {
		return errTradeUnavailable
	}
	if pendingCount > 0 {
		return errTradeDuplicate
	}
	return nil
}

// TradeService представляет сервис для работы с обменами
type TradeService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewTradeService создает новый экземпляр TradeService
func NewTradeService(cfg *config.Config) *TradeService {
	return &TradeService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateTrade создает новое предложение обмена и уведомляет владельца вещи
func (s *TradeService) CreateTrade(c fiber.Ctx) error {
	requesterID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var payload struct {
		ItemID  string `json:"item_id"`
		Message string `json:"message"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if payload.ItemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID объявления не указан"})
	}

	itemID, err := uuid.Parse(payload.ItemID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID объявления"})
	}

	item, err := store.GetItemByID(itemID)
	if err != nil {
		log.Printf("Ошибка получения объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки объявления"})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Объявление не найдено"})
	}

	pending, err := store.CountPendingTrades(itemID, requesterID)
	if err != nil {
		log.Printf("Ошибка проверки существующих предложений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка проверки существующих обменов"})
	}

	switch err := checkTradeRequest(item, requesterID, pending); err {
	case nil:
	case errTradeSelf:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Вы не можете предложить обмен самому себе"})
	case errTradeUnavailable:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Вещь недоступна для обмена"})
	case errTradeDuplicate:
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Такое предложение обмена уже существует"})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	requester, err := store.GetUserByID(requesterID)
	if err != nil || requester == nil {
		log.Printf("Ошибка получения профиля инициатора: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	trade := models.NewTrade(item, requester, payload.Message)

	if err := store.CreateTrade(trade); err != nil {
		log.Printf("Ошибка создания предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка сохранения предложения обмена"})
	}

	// Уведомление владельцу — ровно одно, без отката обмена при сбое
	s.notify(trade.OwnerID, models.NotificationTradeRequest, trade, requester)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"trade_id": trade.ID,
		"trade":    trade,
		"message":  "Предложение обмена успешно создано",
	})
}

// GetMyTrades возвращает обмены, где пользователь — любая из сторон.
// При сбое чтения отдаем пустой список, чтобы один неудачный запрос
// не ломал составную панель
func (s *TradeService) GetMyTrades(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	filter := store.TradeFilter{Participant: &userID}
	if status := c.Query("status"); status != "" && status != "all" {
		filter.Status = status
	}

	trades, err := store.QueryTrades(filter)
	if err != nil {
		log.Printf("Ошибка запроса предложений обмена: %v", err)
		trades = []*models.Trade{}
	}

	// Подтягиваем живые данные сторон; снимки в записи остаются
	// источником для отображения, если профиль уже удален
	for _, trade := range trades {
		if requester, err := store.GetUserByID(trade.RequesterID); err == nil && requester != nil {
			pub := requester.Public()
			trade.Requester = &pub
		}
		if owner, err := store.GetUserByID(trade.OwnerID); err == nil && owner != nil {
			pub := owner.Public()
			trade.Owner = &pub
		}
	}

	return c.JSON(fiber.Map{
		"trades": trades,
		"count":  len(trades),
	})
}

// UpdateTradeStatus проводит обмен по машине состояний:
// pending -> accepted | declined (владелец), accepted -> completed
// (любая из сторон). Остальные переходы отклоняются
func (s *TradeService) UpdateTradeStatus(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	tradeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID предложения обмена"})
	}

	var payload struct {
		Status string `json:"status"` // accepted, declined, completed
	}

	if err := c.Bind().Body(&payload); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if payload.Status != models.TradeStatusAccepted &&
		payload.Status != models.TradeStatusDeclined &&
		payload.Status != models.TradeStatusCompleted {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Недопустимый статус предложения обмена"})
	}

	trade, err := store.GetTradeByID(tradeID)
	if err != nil {
		log.Printf("Ошибка получения предложения обмена: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения предложения обмена"})
	}
	if trade == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Предложение обмена не найдено"})
	}

	// Право на операцию: принять или отклонить может только владелец
	// вещи, завершить — любая из сторон
	switch payload.Status {
	case models.TradeStatusAccepted, models.TradeStatusDeclined:
		if trade.OwnerID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Только владелец вещи может принять или отклонить предложение"})
		}
	case models.TradeStatusCompleted:
		if !trade.HasParticipant(userID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Завершить обмен может только его участник"})
		}
	}

	// Машина состояний: нелегальный переход отклоняется, а не
	// записывается молча
	if err := models.TransitionTradeStatus(trade.Status, payload.Status); err != nil {
		var te *models.TransitionError
		if errors.As(err, &te) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Нельзя изменить статус предложения из текущего состояния",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := store.UpdateTrade(tradeID, map[string]interface{}{"status": payload.Status}); err != nil {
		log.Printf("Ошибка обновления статуса предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления статуса предложения"})
	}
	trade.Status = payload.Status

	actor, err := store.GetUserByID(userID)
	if err != nil {
		log.Printf("Ошибка получения профиля актора: %v", err)
	}

	// Побочные эффекты: статус вещи и счетчики — лучшие усилия,
	// основная мутация уже зафиксирована
	switch payload.Status {
	case models.TradeStatusAccepted:
		s.advanceItemStatus(trade.ItemID, models.ItemStatusPending)
		s.notify(trade.RequesterID, models.NotificationTradeAccepted, trade, actor)

	case models.TradeStatusDeclined:
		s.notify(trade.RequesterID, models.NotificationTradeDeclined, trade, actor)

	case models.TradeStatusCompleted:
		s.advanceItemStatus(trade.ItemID, models.ItemStatusTraded)
		if err := store.IncrementTradeStats(trade.OwnerID); err != nil {
			log.Printf("Ошибка обновления счетчиков владельца: %v", err)
		}
		if err := store.IncrementTradeStats(trade.RequesterID); err != nil {
			log.Printf("Ошибка обновления счетчиков инициатора: %v", err)
		}
		s.notify(trade.Counterparty(userID), models.NotificationTradeCompleted, trade, actor)
	}

	var message string
	switch payload.Status {
	case models.TradeStatusAccepted:
		message = "Предложение обмена принято"
	case models.TradeStatusDeclined:
		message = "Предложение обмена отклонено"
	case models.TradeStatusCompleted:
		message = "Обмен завершен"
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  message,
		"trade_id": tradeID,
		"status":   payload.Status,
	})
}

// advanceItemStatus двигает статус вещи вслед за обменом.
// Сбой логируется и не откатывает мутацию обмена
func (s *TradeService) advanceItemStatus(itemID uuid.UUID, next string) {
	item, err := store.GetItemByID(itemID)
	if err != nil || item == nil {
		log.Printf("Ошибка получения объявления %s для смены статуса: %v", itemID, err)
		return
	}

	if err := models.TransitionItemStatus(item.Status, next); err != nil {
		log.Printf("Статус объявления %s не изменен: %v", itemID, err)
		return
	}

	if err := store.UpdateItem(itemID, map[string]interface{}{"status": next}); err != nil {
		log.Printf("Ошибка смены статуса объявления %s: %v", itemID, err)
	}
}

// notify создает ровно одно уведомление второй стороне обмена.
// Запись — лучшие усилия: сбой логируется, мутация обмена не
// откатывается
func (s *TradeService) notify(recipient uuid.UUID, typ string, trade *models.Trade, actor *models.User) {
	n := models.NewTradeNotification(recipient, typ, trade, actor)
	if err := store.CreateNotification(n); err != nil {
		log.Printf("❌ Ошибка создания уведомления %s для %s: %v", typ, recipient, err)
	}
}
