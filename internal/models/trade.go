package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы предложения обмена. Машина состояний:
// pending --accept--> accepted, pending --decline--> declined,
// accepted --complete--> completed. Из declined и completed выходов нет
const (
	TradeStatusPending   = "pending"
	TradeStatusAccepted  = "accepted"
	TradeStatusDeclined  = "declined"
	TradeStatusCompleted = "completed"
	// Зарезервирован под тип уведомления trade_cancelled,
	// операции с таким переходом сейчас нет
	TradeStatusCancelled = "cancelled"
)

// tradeTransitions описывает допустимые переходы статуса обмена
var tradeTransitions = map[string]map[string]bool{
	TradeStatusPending:   {TradeStatusAccepted: true, TradeStatusDeclined: true},
	TradeStatusAccepted:  {TradeStatusCompleted: true},
	TradeStatusDeclined:  {},
	TradeStatusCompleted: {},
	TradeStatusCancelled: {},
}

// Trade представляет предложение об обмене
type Trade struct {
	ID          uuid.UUID `json:"id"`
	ItemID      uuid.UUID `json:"item_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`

	// Денормализованные снимки на момент создания
	ItemTitle     string `json:"item_title"`
	ItemImageURL  string `json:"item_image_url,omitempty"`
	RequesterName string `json:"requester_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Item      *Item       `json:"item,omitempty"`
	Requester *PublicUser `json:"requester,omitempty"`
	Owner     *PublicUser `json:"owner,omitempty"`
}

// NewTrade собирает новое предложение обмена. Снимки вещи и
// инициатора копируются здесь и только здесь
func NewTrade(item *Item, requester *User, message string) *Trade {
	return &Trade{
		ID:            uuid.New(),
		ItemID:        item.ID,
		RequesterID:   requester.ID,
		OwnerID:       item.UserID,
		Status:        TradeStatusPending,
		Message:       message,
		ItemTitle:     item.Title,
		ItemImageURL:  item.MainImageURL(),
		RequesterName: requester.DisplayName,
	}
}

// Participants возвращает пару участников обмена
func (t *Trade) Participants() [2]uuid.UUID {
	return [2]uuid.UUID{t.OwnerID, t.RequesterID}
}

// HasParticipant отвечает на вопрос "участвует ли пользователь в обмене"
func (t *Trade) HasParticipant(userID uuid.UUID) bool {
	return t.OwnerID == userID || t.RequesterID == userID
}

// Counterparty возвращает второго участника обмена относительно актора
func (t *Trade) Counterparty(actor uuid.UUID) uuid.UUID {
	if actor == t.OwnerID {
		return t.RequesterID
	}
	return t.OwnerID
}

// TransitionTradeStatus проверяет допустимость перехода статуса обмена.
// Любой нелегальный переход отклоняется типизированной ошибкой,
// произвольная перезапись статуса невозможна
func TransitionTradeStatus(current, next string) error {
	if allowed, ok := tradeTransitions[current]; !ok || !allowed[next] {
		return &TransitionError{Kind: "trade", From: current, To: next}
	}
	return nil
}

// SortKey возвращает ключ сортировки "сначала новые"
func (t *Trade) SortKey() (time.Time, uuid.UUID) {
	return t.CreatedAt, t.ID
}
