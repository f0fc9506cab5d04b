package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/models"
)

// CreateNotification сохраняет уведомление для получателя
func CreateNotification(n *models.Notification) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, is_read,
		                           trade_id, item_id, from_user_id, from_user_name)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, n.ID, n.UserID, n.Type, n.Title, n.Message,
		nullableUUID(n.TradeID), nullableUUID(n.ItemID), nullableUUID(n.FromUserID),
		n.FromUserName).Scan(&n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return nil
}

// GetNotificationByID возвращает уведомление или (nil, nil), если его нет
func GetNotificationByID(id uuid.UUID) (*models.Notification, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx, "SELECT "+notificationColumns+" FROM notifications WHERE id = $1", id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения уведомления: %w", err)
	}
	return n, nil
}

// QueryNotifications возвращает уведомления получателя, сначала новые.
// Индекс по получателю не включает created_at, сортировка в памяти
func QueryNotifications(f NotificationFilter) ([]*models.Notification, error) {
	query, args, serverSorted := buildNotificationQuery(f)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса уведомлений: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения результатов: %w", err)
	}

	if !serverSorted {
		SortNewestFirst(notifications)
	}

	return notifications, nil
}

// MarkNotificationRead помечает уведомление прочитанным
func MarkNotificationRead(id uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = true, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомления: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead помечает прочитанными все уведомления получателя
func MarkAllNotificationsRead(userID uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := db.Pool.Exec(ctx, `
		UPDATE notifications SET is_read = true, updated_at = now()
		WHERE user_id = $1 AND is_read = false
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления уведомлений: %w", err)
	}
	return nil
}

// DeleteNotification безусловно удаляет уведомление
func DeleteNotification(id uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err := db.Pool.Exec(ctx, "DELETE FROM notifications WHERE id = $1", id); err != nil {
		return fmt.Errorf("ошибка удаления уведомления: %w", err)
	}
	return nil
}

// scanNotification читает строку уведомления с nullable-ссылками
func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	var tradeID, itemID, fromUserID pgtype.UUID

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&tradeID,
		&itemID,
		&fromUserID,
		&n.FromUserName,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tradeID.Valid {
		n.TradeID = uuid.UUID(tradeID.Bytes)
	}
	if itemID.Valid {
		n.ItemID = uuid.UUID(itemID.Bytes)
	}
	if fromUserID.Valid {
		n.FromUserID = uuid.UUID(fromUserID.Bytes)
	}

	return &n, nil
}

// nullableUUID превращает нулевой UUID в NULL
func nullableUUID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}
