package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/models"
)

// tradeUpdatable — после создания у обмена меняется только статус
var tradeUpdatable = map[string]bool{
	"status": true,
}

// CreateTrade сохраняет новое предложение обмена
func CreateTrade(trade *models.Trade) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO trades (id, item_id, requester_id, owner_id, status, message,
		                    item_title, item_image_url, requester_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, trade.ID, trade.ItemID, trade.RequesterID, trade.OwnerID, trade.Status,
		trade.Message, trade.ItemTitle, trade.ItemImageURL, trade.RequesterName).
		Scan(&trade.CreatedAt, &trade.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка создания предложения обмена: %w", err)
	}
	return nil
}

// GetTradeByID возвращает обмен или (nil, nil), если его нет
func GetTradeByID(tradeID uuid.UUID) (*models.Trade, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var trade models.Trade
	err := db.Pool.QueryRow(ctx, "SELECT "+tradeColumns+" FROM trades WHERE id = $1", tradeID).Scan(
		&trade.ID,
		&trade.ItemID,
		&trade.RequesterID,
		&trade.OwnerID,
		&trade.Status,
		&trade.Message,
		&trade.ItemTitle,
		&trade.ItemImageURL,
		&trade.RequesterName,
		&trade.CreatedAt,
		&trade.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения предложения обмена: %w", err)
	}

	return &trade, nil
}

// QueryTrades возвращает обмены, удовлетворяющие всем фильтрам,
// сначала новые. Выборка по участнику не покрыта составным индексом,
// поэтому сортировка всегда в памяти
func QueryTrades(f TradeFilter) ([]*models.Trade, error) {
	query, args, serverSorted := buildTradeQuery(f)

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса предложений обмена: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		var trade models.Trade
		if err := rows.Scan(
			&trade.ID,
			&trade.ItemID,
			&trade.RequesterID,
			&trade.OwnerID,
			&trade.Status,
			&trade.Message,
			&trade.ItemTitle,
			&trade.ItemImageURL,
			&trade.RequesterName,
			&trade.CreatedAt,
			&trade.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		trades = append(trades, &trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения результатов: %w", err)
	}

	if !serverSorted {
		SortNewestFirst(trades)
	}

	return trades, nil
}

// CountPendingTrades считает ожидающие обмены той же пары
// вещь+инициатор, чтобы не плодить дубликаты
func CountPendingTrades(itemID, requesterID uuid.UUID) (int, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM trades
		WHERE item_id = $1 AND requester_id = $2 AND status = 'pending'
	`, itemID, requesterID).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("ошибка проверки существующих предложений: %w", err)
	}
	return count, nil
}

// UpdateTrade частично обновляет обмен (на практике — только статус)
func UpdateTrade(tradeID uuid.UUID, fields map[string]interface{}) error {
	query, args, err := buildUpdate("trades", tradeID, fields, tradeUpdatable)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка обновления статуса предложения: %w", err)
	}
	return nil
}
