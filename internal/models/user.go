package models

import (
	"time"

	"github.com/google/uuid"
)

// User представляет профиль пользователя в системе
type User struct {
	ID          uuid.UUID    `json:"id"`
	Email       string       `json:"email,omitempty"`
	DisplayName string       `json:"display_name"`
	PhotoURL    string       `json:"photo_url,omitempty"`
	TelegramID  int64        `json:"telegram_id,omitempty"`
	Stats       TradingStats `json:"trading_stats"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	LastLoginAt time.Time    `json:"last_login_at,omitempty"`
}

// TradingStats содержит счетчики обменов пользователя.
// Заполняется нулями при первом входе
type TradingStats struct {
	TotalTrades      int     `json:"total_trades"`
	SuccessfulTrades int     `json:"successful_trades"`
	Rating           float64 `json:"rating"`
	TotalRatings     int     `json:"total_ratings"`
}

// PublicUser представляет минимальную информацию о пользователе для API
type PublicUser struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
}

// Public возвращает урезанное представление профиля для чужих глаз
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
	}
}
