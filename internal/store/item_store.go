package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/models"
)

// itemUpdatable — белый список полей частичного обновления объявления
var itemUpdatable = map[string]bool{
	"title":            true,
	"description":      true,
	"category":         true,
	"condition":        true,
	"value":            true,
	"location":         true,
	"trade_preference": true,
	"status":           true,
}

// CreateItem сохраняет новое объявление вместе с изображениями
func CreateItem(item *models.Item) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO items (id, user_id, title, description, category, condition, value,
		                   location, trade_preference, status, owner_name, owner_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, item.ID, item.UserID, item.Title, item.Description, item.Category, item.Condition,
		item.Value, item.Location, item.TradePreference, item.Status,
		item.OwnerName, item.OwnerEmail).Scan(&item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка вставки объявления: %w", err)
	}

	for i := range item.Images {
		img := &item.Images[i]
		img.ItemID = item.ID
		img.Position = i
		img.IsMain = i == 0 // Первое изображение - основное

		err = tx.QueryRow(ctx, `
			INSERT INTO item_images (item_id, url, public_id, is_main, position)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, item.ID, img.URL, img.PublicID, img.IsMain, img.Position).Scan(&img.ID, &img.CreatedAt)

		if err != nil {
			return fmt.Errorf("ошибка вставки изображения: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}

	return nil
}

// GetItemByID возвращает объявление или (nil, nil), если его нет.
// Отсутствие записи — нормальный исход, а не ошибка транспорта
func GetItemByID(itemID uuid.UUID) (*models.Item, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var item models.Item
	err := db.Pool.QueryRow(ctx, "SELECT "+itemColumns+" FROM items WHERE id = $1", itemID).Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.Condition,
		&item.Value,
		&item.Location,
		&item.TradePreference,
		&item.Status,
		&item.OwnerName,
		&item.OwnerEmail,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения объявления: %w", err)
	}

	if err := loadItemImages(&item); err != nil {
		return nil, err
	}

	return &item, nil
}

// QueryItems возвращает объявления, удовлетворяющие всем фильтрам
// сразу, сначала новые. Если комбинация фильтров не покрыта индексом,
// сортировка выполняется в памяти — итоговый порядок одинаков
func QueryItems(f ItemFilter) ([]*models.Item, error) {
	query, args, serverSorted := buildItemQuery(f)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса объявлений: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Title,
			&item.Description,
			&item.Category,
			&item.Condition,
			&item.Value,
			&item.Location,
			&item.TradePreference,
			&item.Status,
			&item.OwnerName,
			&item.OwnerEmail,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения результатов: %w", err)
	}

	if !serverSorted {
		SortNewestFirst(items)
		items = paginate(items, f.Offset, f.Limit)
	}

	for _, item := range items {
		if err := loadItemImages(item); err != nil {
			return nil, err
		}
	}

	return items, nil
}

// CountItems возвращает число объявлений, удовлетворяющих фильтрам
func CountItems(f ItemFilter) (int, error) {
	f.Limit = 0
	f.Offset = 0
	query, args, _ := buildItemQuery(f)
	query = "SELECT COUNT(*) FROM (" + query + ") q"

	ctx, cancel := db.GetContext()
	defer cancel()

	var total int
	if err := db.Pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета объявлений: %w", err)
	}
	return total, nil
}

// UpdateItem частично обновляет объявление: затрагиваются только
// переданные поля, updated_at проставляется заново
func UpdateItem(itemID uuid.UUID, fields map[string]interface{}) error {
	query, args, err := buildUpdate("items", itemID, fields, itemUpdatable)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка обновления объявления: %w", err)
	}
	return nil
}

// ReplaceItemImages заменяет набор изображений объявления
func ReplaceItemImages(itemID uuid.UUID, images []models.ItemImage) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM item_images WHERE item_id = $1", itemID); err != nil {
		return fmt.Errorf("ошибка удаления старых изображений: %w", err)
	}

	for i, img := range images {
		isMain := i == 0
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_images (item_id, url, public_id, is_main, position)
			VALUES ($1, $2, $3, $4, $5)
		`, itemID, img.URL, img.PublicID, isMain, i); err != nil {
			return fmt.Errorf("ошибка вставки изображения: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// DeleteItem безусловно удаляет объявление. Изображения уходят по
// каскаду; обмены и уведомления, ссылающиеся на объявление, остаются
func DeleteItem(itemID uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err := db.Pool.Exec(ctx, "DELETE FROM items WHERE id = $1", itemID); err != nil {
		return fmt.Errorf("ошибка удаления объявления: %w", err)
	}
	return nil
}

// loadItemImages подтягивает изображения объявления в порядке позиций
func loadItemImages(item *models.Item) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT id, item_id, url, public_id, is_main, position, created_at
		FROM item_images
		WHERE item_id = $1
		ORDER BY position ASC
	`, item.ID)
	if err != nil {
		return fmt.Errorf("ошибка запроса изображений: %w", err)
	}
	defer rows.Close()

	var images []models.ItemImage
	for rows.Next() {
		var img models.ItemImage
		if err := rows.Scan(&img.ID, &img.ItemID, &img.URL, &img.PublicID,
			&img.IsMain, &img.Position, &img.CreatedAt); err != nil {
			return fmt.Errorf("ошибка сканирования изображения: %w", err)
		}
		images = append(images, img)
	}

	item.Images = images
	return rows.Err()
}
