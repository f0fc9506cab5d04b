package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTradeNotification(t *testing.T) {
	recipient := uuid.New()
	actor := &User{ID: uuid.New(), DisplayName: "Алексей"}
	trade := &Trade{ID: uuid.New(), ItemID: uuid.New(), ItemTitle: "Велосипед"}

	n := NewTradeNotification(recipient, NotificationTradeRequest, trade, actor)

	assert.Equal(t, recipient, n.UserID)
	assert.Equal(t, NotificationTradeRequest, n.Type)
	assert.Equal(t, "Новый запрос на обмен", n.Title)
	assert.Equal(t, "Алексей хочет обменяться на вашу вещь «Велосипед»", n.Message)
	assert.Equal(t, trade.ID, n.TradeID)
	assert.Equal(t, trade.ItemID, n.ItemID)
	assert.Equal(t, actor.ID, n.FromUserID)
	assert.Equal(t, "Алексей", n.FromUserName)
	assert.False(t, n.IsRead)
}

func TestNotificationMessagesByType(t *testing.T) {
	trade := &Trade{ID: uuid.New(), ItemTitle: "Гитара"}
	actor := &User{ID: uuid.New(), DisplayName: "Мария"}

	cases := map[string]struct {
		title   string
		message string
	}{
		NotificationTradeAccepted: {
			title:   "Обмен принят",
			message: "Ваш запрос на обмен «Гитара» принят!",
		},
		NotificationTradeDeclined: {
			title:   "Обмен отклонен",
			message: "Ваш запрос на обмен «Гитара» отклонен",
		},
		NotificationTradeCompleted: {
			title:   "Обмен завершен",
			message: "Обмен «Гитара» успешно завершен!",
		},
		NotificationTradeCancelled: {
			title:   "Обмен отменен",
			message: "Обмен «Гитара» был отменен",
		},
	}

	for typ, want := range cases {
		n := NewTradeNotification(uuid.New(), typ, trade, actor)
		assert.Equal(t, want.title, n.Title, typ)
		assert.Equal(t, want.message, n.Message, typ)
	}
}

func TestNewTradeNotificationWithoutActor(t *testing.T) {
	trade := &Trade{ID: uuid.New(), ItemTitle: "Книга"}

	n := NewTradeNotification(uuid.New(), NotificationTradeRequest, trade, nil)

	assert.Equal(t, "Кто-то хочет обменяться на вашу вещь «Книга»", n.Message)
	assert.Equal(t, uuid.Nil, n.FromUserID)
	assert.Equal(t, "", n.FromUserName)
}

func TestNewTradeNotificationUnknownType(t *testing.T) {
	trade := &Trade{ID: uuid.New(), ItemTitle: "Книга"}

	n := NewTradeNotification(uuid.New(), NotificationSystem, trade, nil)

	assert.Equal(t, "Обновление обмена", n.Title)
	assert.Equal(t, "Статус обмена изменился", n.Message)
}
