package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransitionItemStatus(t *testing.T) {
	// Разрешенные переходы только вперед
	assert.NoError(t, TransitionItemStatus(ItemStatusAvailable, ItemStatusPending))
	assert.NoError(t, TransitionItemStatus(ItemStatusPending, ItemStatusTraded))

	// Один и тот же статус — не переход
	assert.NoError(t, TransitionItemStatus(ItemStatusPending, ItemStatusPending))

	// Назад и через ступеньку нельзя
	assert.Error(t, TransitionItemStatus(ItemStatusAvailable, ItemStatusTraded))
	assert.Error(t, TransitionItemStatus(ItemStatusPending, ItemStatusAvailable))
	assert.Error(t, TransitionItemStatus(ItemStatusTraded, ItemStatusAvailable))
	assert.Error(t, TransitionItemStatus(ItemStatusTraded, ItemStatusPending))

	// Неизвестный статус
	assert.Error(t, TransitionItemStatus("archived", ItemStatusPending))
}

func TestNewItemSnapshotsOwner(t *testing.T) {
	owner := &User{ID: uuid.New(), Email: "maria@example.com", DisplayName: "Мария"}

	item := NewItem(owner, "Гитара", "Акустическая", "Музыка", "Like New", 200, "", "Меняю на укулеле")

	assert.Equal(t, ItemStatusAvailable, item.Status)
	assert.Equal(t, owner.ID, item.UserID)
	assert.Equal(t, "Мария", item.OwnerName)
	assert.Equal(t, "maria@example.com", item.OwnerEmail)

	// Переименование владельца снимок не трогает
	owner.DisplayName = "Мария К."
	assert.Equal(t, "Мария", item.OwnerName)
}

func TestMainImageURL(t *testing.T) {
	item := &Item{}
	assert.Equal(t, "", item.MainImageURL())

	item.Images = []ItemImage{
		{URL: "https://example.com/1.jpg"},
		{URL: "https://example.com/2.jpg"},
	}
	// Без явной отметки берется первое изображение
	assert.Equal(t, "https://example.com/1.jpg", item.MainImageURL())

	item.Images[1].IsMain = true
	assert.Equal(t, "https://example.com/2.jpg", item.MainImageURL())
}

func TestValidConditions(t *testing.T) {
	for _, cond := range []string{"New", "Like New", "Good", "Fair", "Poor"} {
		assert.True(t, ValidConditions[cond], cond)
	}
	assert.False(t, ValidConditions["Broken"])
	assert.False(t, ValidConditions["new"])
}
