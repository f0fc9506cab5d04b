package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы объявления. Переходы только вперед:
// available -> pending -> traded
const (
	ItemStatusAvailable = "available"
	ItemStatusPending   = "pending"
	ItemStatusTraded    = "traded"
)

// ValidConditions — допустимые состояния вещи
var ValidConditions = map[string]bool{
	"New":      true,
	"Like New": true,
	"Good":     true,
	"Fair":     true,
	"Poor":     true,
}

// itemTransitions описывает допустимые переходы статуса объявления
var itemTransitions = map[string]map[string]bool{
	ItemStatusAvailable: {ItemStatusPending: true},
	ItemStatusPending:   {ItemStatusTraded: true},
	ItemStatusTraded:    {},
}

// Item представляет объявление в системе
type Item struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	Condition       string      `json:"condition"`
	Value           float64     `json:"value"`
	Location        string      `json:"location,omitempty"`
	TradePreference string      `json:"trade_preference,omitempty"`
	Status          string      `json:"status"`
	Images          []ItemImage `json:"images"`
	OwnerName       string      `json:"owner_name,omitempty"`
	OwnerEmail      string      `json:"owner_email,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// ItemImage представляет изображение объявления
type ItemImage struct {
	ID        uuid.UUID `json:"id"`
	ItemID    uuid.UUID `json:"item_id"`
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	IsMain    bool      `json:"is_main"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// NewItem собирает новое объявление. Снимок имени и почты владельца
// копируется здесь и только здесь; он может устареть относительно
// живого профиля
func NewItem(owner *User, title, description, category, condition string,
	value float64, location, tradePreference string) *Item {
	return &Item{
		ID:              uuid.New(),
		UserID:          owner.ID,
		Title:           title,
		Description:     description,
		Category:        category,
		Condition:       condition,
		Value:           value,
		Location:        location,
		TradePreference: tradePreference,
		Status:          ItemStatusAvailable,
		OwnerName:       owner.DisplayName,
		OwnerEmail:      owner.Email,
	}
}

// TransitionItemStatus проверяет допустимость перехода статуса объявления
func TransitionItemStatus(current, next string) error {
	if current == next {
		return nil
	}
	if allowed, ok := itemTransitions[current]; !ok || !allowed[next] {
		return &TransitionError{Kind: "item", From: current, To: next}
	}
	return nil
}

// MainImageURL возвращает URL основного изображения объявления
func (i *Item) MainImageURL() string {
	for _, img := range i.Images {
		if img.IsMain {
			return img.URL
		}
	}
	if len(i.Images) > 0 {
		return i.Images[0].URL
	}
	return ""
}

// SortKey возвращает ключ сортировки "сначала новые"
func (i *Item) SortKey() (time.Time, uuid.UUID) {
	return i.CreatedAt, i.ID
}

// TransitionError — ошибка недопустимого перехода статуса
type TransitionError struct {
	Kind string
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход статуса %s: %q -> %q", e.Kind, e.From, e.To)
}
