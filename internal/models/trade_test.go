package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTradeStatus(t *testing.T) {
	cases := []struct {
		from string
		to   string
		ok   bool
	}{
		{TradeStatusPending, TradeStatusAccepted, true},
		{TradeStatusPending, TradeStatusDeclined, true},
		{TradeStatusAccepted, TradeStatusCompleted, true},

		// pending нельзя завершить напрямую
		{TradeStatusPending, TradeStatusCompleted, false},
		// повторное принятие уже принятого
		{TradeStatusAccepted, TradeStatusAccepted, false},
		// из терминальных состояний выходов нет
		{TradeStatusDeclined, TradeStatusAccepted, false},
		{TradeStatusDeclined, TradeStatusCompleted, false},
		{TradeStatusCompleted, TradeStatusAccepted, false},
		{TradeStatusCompleted, TradeStatusPending, false},
		// cancelled зарезервирован, переходов в него и из него нет
		{TradeStatusPending, TradeStatusCancelled, false},
		{TradeStatusCancelled, TradeStatusPending, false},
		// назад в pending нельзя
		{TradeStatusAccepted, TradeStatusPending, false},
	}

	for _, tc := range cases {
		err := TransitionTradeStatus(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)

			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tc.from, te.From)
			assert.Equal(t, tc.to, te.To)
		}
	}
}

func TestNewTradeCopiesSnapshots(t *testing.T) {
	owner := &User{ID: uuid.New(), DisplayName: "Мария"}
	requester := &User{ID: uuid.New(), DisplayName: "Алексей"}

	item := NewItem(owner, "Велосипед", "Горный", "Спорт", "Good", 150, "Москва", "")
	item.Images = []ItemImage{
		{URL: "https://example.com/a.jpg", IsMain: false},
		{URL: "https://example.com/b.jpg", IsMain: true},
	}

	trade := NewTrade(item, requester, "Меняю на самокат")

	assert.Equal(t, TradeStatusPending, trade.Status)
	assert.Equal(t, item.ID, trade.ItemID)
	assert.Equal(t, owner.ID, trade.OwnerID)
	assert.Equal(t, requester.ID, trade.RequesterID)

	// Снимки копируются на момент создания
	assert.Equal(t, "Велосипед", trade.ItemTitle)
	assert.Equal(t, "https://example.com/b.jpg", trade.ItemImageURL)
	assert.Equal(t, "Алексей", trade.RequesterName)

	// Последующее изменение вещи снимок не трогает
	item.Title = "Самокат"
	assert.Equal(t, "Велосипед", trade.ItemTitle)
}

func TestTradeParticipants(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()
	stranger := uuid.New()

	trade := &Trade{OwnerID: ownerID, RequesterID: requesterID}

	assert.True(t, trade.HasParticipant(ownerID))
	assert.True(t, trade.HasParticipant(requesterID))
	assert.False(t, trade.HasParticipant(stranger))

	assert.Equal(t, requesterID, trade.Counterparty(ownerID))
	assert.Equal(t, ownerID, trade.Counterparty(requesterID))
}
