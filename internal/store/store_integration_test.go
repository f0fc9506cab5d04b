package store

import (
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/models"
)

var (
	testDBOnce sync.Once
	testDBErr  error
)

// requireTestDB подключает тест к базе из TEST_DATABASE_URL и
// применяет миграции. Без переменной окружения тесты пропускаются
func requireTestDB(t *testing.T) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL не задан, пропускаем тесты с базой")
	}

	testDBOnce.Do(func() {
		cfg := &config.Config{DatabaseURL: url}
		if testDBErr = db.InitDB(cfg); testDBErr != nil {
			return
		}
		testDBErr = db.RunMigrations(cfg, "../../migrations")
	})
	require.NoError(t, testDBErr)
}

func createTestUser(t *testing.T, name string) *models.User {
	t.Helper()

	email := uuid.New().String() + "@test.local"
	user, err := UpsertProfileByEmail(email, name, "", "")
	require.NoError(t, err)
	return user
}

func TestProfileUpsertIdempotence(t *testing.T) {
	requireTestDB(t)

	email := uuid.New().String() + "@test.local"

	first, err := UpsertProfileByEmail(email, "Мария", "https://example.com/m.jpg", "")
	require.NoError(t, err)

	second, err := UpsertProfileByEmail(email, "Мария", "https://example.com/m.jpg", "")
	require.NoError(t, err)

	// Повторный вызов с теми же данными ничего не меняет, кроме отметок
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.DisplayName, second.DisplayName)
	assert.Equal(t, first.PhotoURL, second.PhotoURL)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.False(t, second.LastLoginAt.Before(first.LastLoginAt))

	// Счетчики обменов заведены нулями при первом входе
	assert.Equal(t, models.TradingStats{}, first.Stats)

	// Пустые переданные поля не затирают сохраненные
	third, err := UpsertProfileByEmail(email, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Мария", third.DisplayName)
	assert.Equal(t, "https://example.com/m.jpg", third.PhotoURL)
}

func TestItemRoundTrip(t *testing.T) {
	requireTestDB(t)

	owner := createTestUser(t, "Мария")

	item := models.NewItem(owner, "Велосипед", "Горный, 21 скорость", "Спорт", "Good",
		150, "Москва", "Меняю на самокат")
	item.Images = []models.ItemImage{
		{URL: "https://example.com/a.jpg", PublicID: "a"},
		{URL: "https://example.com/b.jpg", PublicID: "b"},
	}
	require.NoError(t, CreateItem(item))

	got, err := GetItemByID(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Все переданные поля возвращаются как есть
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, owner.ID, got.UserID)
	assert.Equal(t, "Велосипед", got.Title)
	assert.Equal(t, "Горный, 21 скорость", got.Description)
	assert.Equal(t, "Спорт", got.Category)
	assert.Equal(t, "Good", got.Condition)
	assert.Equal(t, 150.0, got.Value)
	assert.Equal(t, "Москва", got.Location)
	assert.Equal(t, "Меняю на самокат", got.TradePreference)
	assert.Equal(t, "Мария", got.OwnerName)

	// Плюс проставленные сервером: статус по умолчанию и отметки времени
	assert.Equal(t, models.ItemStatusAvailable, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())

	require.Len(t, got.Images, 2)
	assert.True(t, got.Images[0].IsMain)
	assert.False(t, got.Images[1].IsMain)
}

func TestItemLifecycle(t *testing.T) {
	requireTestDB(t)

	owner := createTestUser(t, "Мария")

	item := models.NewItem(owner, "Гитара", "Акустическая", "Музыка", "Like New", 200, "", "")
	require.NoError(t, CreateItem(item))

	// Выборка по владельцу возвращает ровно одну запись
	items, err := QueryItems(ItemFilter{OwnerID: &owner.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
	assert.Equal(t, models.ItemStatusAvailable, items[0].Status)

	require.NoError(t, DeleteItem(item.ID))

	// После удаления — отсутствие, а не ошибка
	got, err := GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTradeRequestScenario(t *testing.T) {
	requireTestDB(t)

	owner := createTestUser(t, "Мария")
	requester := createTestUser(t, "Алексей")

	item := models.NewItem(owner, "Книга", "Фантастика", "Книги", "Good", 10, "", "")
	require.NoError(t, CreateItem(item))

	trade := models.NewTrade(item, requester, "Меняю на другую книгу")
	require.NoError(t, CreateTrade(trade))

	assert.Equal(t, models.TradeStatusPending, trade.Status)
	assert.Equal(t, [2]uuid.UUID{owner.ID, requester.ID}, trade.Participants())

	// Созданное предложение видно в проверке дубликатов
	pending, err := CountPendingTrades(item.ID, requester.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	// Ровно одно уведомление владельцу со ссылкой на тот же обмен
	n := models.NewTradeNotification(owner.ID, models.NotificationTradeRequest, trade, requester)
	require.NoError(t, CreateNotification(n))

	list, err := QueryNotifications(NotificationFilter{UserID: &owner.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationTradeRequest, list[0].Type)
	assert.Equal(t, trade.ID, list[0].TradeID)
	assert.Equal(t, item.ID, list[0].ItemID)
	assert.Equal(t, requester.ID, list[0].FromUserID)
}
