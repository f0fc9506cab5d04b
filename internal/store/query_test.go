package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildItemQueryNoFilters(t *testing.T) {
	query, args, serverSorted := buildItemQuery(ItemFilter{})

	assert.True(t, serverSorted, "выборка без фильтров покрыта idx_items_created")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestBuildItemQueryIndexedFilters(t *testing.T) {
	ownerID := uuid.New()

	// Фильтр по статусу покрыт idx_items_status_created
	query, args, serverSorted := buildItemQuery(ItemFilter{Status: "available"})
	assert.True(t, serverSorted)
	assert.Contains(t, query, "status = $1")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Equal(t, []interface{}{"available"}, args)

	// Фильтр по владельцу покрыт idx_items_user_created
	query, args, serverSorted = buildItemQuery(ItemFilter{OwnerID: &ownerID})
	assert.True(t, serverSorted)
	assert.Contains(t, query, "user_id = $1")
	assert.Len(t, args, 1)
}

func TestBuildItemQueryUnindexedFiltersFallBack(t *testing.T) {
	ownerID := uuid.New()

	// Категория не входит ни в один составной индекс
	query, _, serverSorted := buildItemQuery(ItemFilter{Category: "Спорт"})
	assert.False(t, serverSorted)
	assert.NotContains(t, query, "ORDER BY")

	// Комбинация владелец+статус тоже не покрыта
	query, args, serverSorted := buildItemQuery(ItemFilter{OwnerID: &ownerID, Status: "available"})
	assert.False(t, serverSorted)
	assert.NotContains(t, query, "ORDER BY")
	assert.Contains(t, query, "user_id = $1 AND status = $2")
	assert.Len(t, args, 2)
}

func TestBuildItemQueryConjunction(t *testing.T) {
	query, args, _ := buildItemQuery(ItemFilter{
		Category:  "Спорт",
		Condition: "Good",
		Status:    "available",
	})

	// Все фильтры соединяются по И
	assert.Contains(t, query, "category = $1 AND condition = $2 AND status = $3")
	assert.Equal(t, []interface{}{"Спорт", "Good", "available"}, args)
}

func TestBuildItemQueryLimitOffset(t *testing.T) {
	query, args, _ := buildItemQuery(ItemFilter{Status: "available", Limit: 20, Offset: 40})

	assert.Contains(t, query, "LIMIT $2")
	assert.Contains(t, query, "OFFSET $3")
	assert.Equal(t, []interface{}{"available", 20, 40}, args)
}

func TestBuildItemQueryOffsetOnFallbackPath(t *testing.T) {
	// Комбинация без индекса: OFFSET не уходит в SQL, страницы
	// режутся после сортировки в памяти
	query, args, serverSorted := buildItemQuery(ItemFilter{Category: "Спорт", Limit: 20, Offset: 40})

	assert.False(t, serverSorted)
	assert.NotContains(t, query, "OFFSET")
	// LIMIT добирает пропускаемые строки
	assert.Equal(t, []interface{}{"Спорт", 60}, args)
}

func TestPaginate(t *testing.T) {
	records := []int{5, 4, 3, 2, 1}

	assert.Equal(t, []int{3, 2}, paginate(records, 2, 2))
	assert.Equal(t, []int{5, 4}, paginate(records, 0, 2))
	assert.Equal(t, []int{3, 2, 1}, paginate(records, 2, 0))
	assert.Equal(t, records, paginate(records, 0, 0))
	assert.Nil(t, paginate(records, 10, 2))
}

func TestBuildTradeQueryAlwaysClientSorted(t *testing.T) {
	participant := uuid.New()

	query, args, serverSorted := buildTradeQuery(TradeFilter{Participant: &participant})

	// Фильтр по участнику — ИЛИ по двум колонкам, индекса нет
	assert.False(t, serverSorted)
	assert.NotContains(t, query, "ORDER BY")
	assert.Contains(t, query, "(requester_id = $1 OR owner_id = $1)")
	assert.Len(t, args, 1)

	query, args, serverSorted = buildTradeQuery(TradeFilter{Participant: &participant, Status: "pending"})
	assert.False(t, serverSorted)
	assert.Contains(t, query, "status = $2")
	assert.Len(t, args, 2)
}

func TestBuildNotificationQuery(t *testing.T) {
	userID := uuid.New()

	query, args, serverSorted := buildNotificationQuery(NotificationFilter{UserID: &userID, Unread: true})

	assert.False(t, serverSorted)
	assert.Contains(t, query, "user_id = $1")
	assert.Contains(t, query, "is_read = false")
	assert.Len(t, args, 1)
}

// Реестр индексов — это зеркало миграций: оба пути сортировки должны
// включаться ровно для тех комбинаций, что записаны в реестре
func TestIndexRegistryRoutesSorting(t *testing.T) {
	assert.True(t, hasSortIndex("items", nil))
	assert.True(t, hasSortIndex("items", []string{"status"}))
	assert.True(t, hasSortIndex("items", []string{"user_id"}))

	assert.False(t, hasSortIndex("items", []string{"category"}))
	assert.False(t, hasSortIndex("items", []string{"status", "user_id"}))
	assert.False(t, hasSortIndex("trades", nil))
	assert.False(t, hasSortIndex("notifications", []string{"user_id"}))
	assert.False(t, hasSortIndex("unknown", nil))

	// Порядок колонок в запросе не влияет на подбор индекса
	assert.Equal(t,
		hasSortIndex("items", []string{"user_id", "status"}),
		hasSortIndex("items", []string{"status", "user_id"}))
}

func TestBuildUpdate(t *testing.T) {
	id := uuid.New()
	allowed := map[string]bool{"title": true, "status": true}

	query, args, err := buildUpdate("items", id, map[string]interface{}{
		"status": "pending",
		"title":  "Гитара",
	}, allowed)
	require.NoError(t, err)

	// Поля идут в отсортированном порядке, updated_at добавляется всегда
	assert.Equal(t, "UPDATE items SET status = $1, title = $2, updated_at = now() WHERE id = $3", query)
	assert.Equal(t, []interface{}{"pending", "Гитара", id}, args)
}

func TestBuildUpdateRejectsUnknownField(t *testing.T) {
	id := uuid.New()
	allowed := map[string]bool{"title": true}

	_, _, err := buildUpdate("items", id, map[string]interface{}{"owner_email": "x@y.z"}, allowed)
	assert.Error(t, err)

	_, _, err = buildUpdate("items", id, map[string]interface{}{}, allowed)
	assert.Error(t, err)
}
