package store

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/baterx-api/internal/models"
)

func itemAt(created time.Time) *models.Item {
	return &models.Item{ID: uuid.New(), CreatedAt: created}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := itemAt(base.Add(-2 * time.Hour))
	middle := itemAt(base.Add(-time.Hour))
	newest := itemAt(base)

	items := []*models.Item{middle, oldest, newest}
	SortNewestFirst(items)

	assert.Equal(t, []*models.Item{newest, middle, oldest}, items)
}

func TestSortNewestFirstZeroTimeIsOldest(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	missing := &models.Item{ID: uuid.New()} // без отметки времени
	dated := itemAt(base)

	items := []*models.Item{missing, dated}
	SortNewestFirst(items)

	assert.Equal(t, dated, items[0])
	assert.Equal(t, missing, items[1])
}

func TestSortNewestFirstTieBreaksByID(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a := itemAt(created)
	b := itemAt(created)
	c := itemAt(created)

	items := []*models.Item{a, b, c}
	SortNewestFirst(items)

	// При равном времени порядок определяется убыванием ID побайтово,
	// как в ORDER BY created_at DESC, id DESC
	for i := 1; i < len(items); i++ {
		_, prev := items[i-1].SortKey()
		_, cur := items[i].SortKey()
		assert.True(t, bytes.Compare(prev[:], cur[:]) > 0)
	}
}

// Ключевое свойство резервного пути: на любом наборе записей порядок
// в памяти совпадает с серверным ORDER BY created_at DESC, id DESC
func TestSortNewestFirstMatchesServerOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	var items []*models.Item
	for i := 0; i < 200; i++ {
		// Намеренно много совпадающих отметок времени
		created := base.Add(time.Duration(rng.Intn(20)) * time.Minute)
		if rng.Intn(10) == 0 {
			created = time.Time{}
		}
		items = append(items, itemAt(created))
	}

	SortNewestFirst(items)

	for i := 1; i < len(items); i++ {
		ti, idi := items[i-1].SortKey()
		tj, idj := items[i].SortKey()

		require.False(t, ti.Before(tj), "время должно не возрастать")
		if ti.Equal(tj) {
			require.True(t, bytes.Compare(idi[:], idj[:]) > 0, "ID должен убывать при равном времени")
		}
	}
}

func TestSortNewestFirstWorksForAllRecordTypes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	trades := []*models.Trade{
		{ID: uuid.New(), CreatedAt: base.Add(-time.Hour)},
		{ID: uuid.New(), CreatedAt: base},
	}
	SortNewestFirst(trades)
	assert.Equal(t, base, trades[0].CreatedAt)

	notifications := []*models.Notification{
		{ID: uuid.New(), CreatedAt: base.Add(-time.Minute)},
		{ID: uuid.New(), CreatedAt: base},
	}
	SortNewestFirst(notifications)
	assert.Equal(t, base, notifications[0].CreatedAt)
}
