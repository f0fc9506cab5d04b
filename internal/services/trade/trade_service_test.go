package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rajivgeraev/baterx-api/internal/models"
)

func TestCheckTradeRequest(t *testing.T) {
	ownerID := uuid.New()
	requesterID := uuid.New()

	available := &models.Item{UserID: ownerID, Status: models.ItemStatusAvailable}

	assert.NoError(t, checkTradeRequest(available, requesterID, 0))

	// Обмен с самим собой отклоняется до любой записи
	assert.ErrorIs(t, checkTradeRequest(available, ownerID, 0), errTradeSelf)

	// Вещь уже в обмене или обменяна
	pending := &models.Item{UserID: ownerID, Status: models.ItemStatusPending}
	traded := &models.Item{UserID: ownerID, Status: models.ItemStatusTraded}
	assert.ErrorIs(t, checkTradeRequest(pending, requesterID, 0), errTradeUnavailable)
	assert.ErrorIs(t, checkTradeRequest(traded, requesterID, 0), errTradeUnavailable)

	// Повторное ожидающее предложение той же пары вещь+инициатор
	assert.ErrorIs(t, checkTradeRequest(available, requesterID, 1), errTradeDuplicate)

	// Самообмен важнее прочих причин отказа
	assert.ErrorIs(t, checkTradeRequest(pending, ownerID, 3), errTradeSelf)
}
