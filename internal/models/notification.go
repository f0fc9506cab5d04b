package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationTradeRequest   = "trade_request"
	NotificationTradeAccepted  = "trade_accepted"
	NotificationTradeDeclined  = "trade_declined"
	NotificationTradeCompleted = "trade_completed"
	NotificationTradeCancelled = "trade_cancelled"
	NotificationSystem         = "system"
	NotificationTest           = "test"
)

// Notification представляет уведомление о событии, адресованное получателю
type Notification struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"is_read"`
	TradeID      uuid.UUID `json:"trade_id,omitempty"`
	ItemID       uuid.UUID `json:"item_id,omitempty"`
	FromUserID   uuid.UUID `json:"from_user_id,omitempty"`
	FromUserName string    `json:"from_user_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// notificationTitles — заголовки уведомлений по типам
var notificationTitles = map[string]string{
	NotificationTradeRequest:   "Новый запрос на обмен",
	NotificationTradeAccepted:  "Обмен принят",
	NotificationTradeDeclined:  "Обмен отклонен",
	NotificationTradeCompleted: "Обмен завершен",
	NotificationTradeCancelled: "Обмен отменен",
}

// notificationMessage формирует текст уведомления, подставляя
// название вещи и имя актора
func notificationMessage(typ, itemTitle, actorName string) string {
	if actorName == "" {
		actorName = "Кто-то"
	}
	switch typ {
	case NotificationTradeRequest:
		return fmt.Sprintf("%s хочет обменяться на вашу вещь «%s»", actorName, itemTitle)
	case NotificationTradeAccepted:
		return fmt.Sprintf("Ваш запрос на обмен «%s» принят!", itemTitle)
	case NotificationTradeDeclined:
		return fmt.Sprintf("Ваш запрос на обмен «%s» отклонен", itemTitle)
	case NotificationTradeCompleted:
		return fmt.Sprintf("Обмен «%s» успешно завершен!", itemTitle)
	case NotificationTradeCancelled:
		return fmt.Sprintf("Обмен «%s» был отменен", itemTitle)
	default:
		return "Статус обмена изменился"
	}
}

// NewTradeNotification собирает уведомление о смене статуса обмена,
// адресованное второму участнику
func NewTradeNotification(recipient uuid.UUID, typ string, trade *Trade, actor *User) *Notification {
	title, ok := notificationTitles[typ]
	if !ok {
		title = "Обновление обмена"
	}

	actorName := ""
	if actor != nil {
		actorName = actor.DisplayName
	}

	n := &Notification{
		ID:           uuid.New(),
		UserID:       recipient,
		Type:         typ,
		Title:        title,
		Message:      notificationMessage(typ, trade.ItemTitle, actorName),
		TradeID:      trade.ID,
		ItemID:       trade.ItemID,
		FromUserName: actorName,
	}
	if actor != nil {
		n.FromUserID = actor.ID
	}
	return n
}

// SortKey возвращает ключ сортировки "сначала новые"
func (n *Notification) SortKey() (time.Time, uuid.UUID) {
	return n.CreatedAt, n.ID
}
