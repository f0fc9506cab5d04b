package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ItemFilter задает условия выборки объявлений. Все заданные поля
// комбинируются по И; ИЛИ-фильтрация не поддерживается
type ItemFilter struct {
	OwnerID   *uuid.UUID
	Category  string
	Condition string
	Status    string
	Limit     int
	Offset    int
}

// TradeFilter задает условия выборки обменов
type TradeFilter struct {
	Participant *uuid.UUID // обмены, где пользователь — любая из сторон
	ItemID      *uuid.UUID
	Status      string
	Limit       int
}

// NotificationFilter задает условия выборки уведомлений
type NotificationFilter struct {
	UserID *uuid.UUID
	Unread bool
	Limit  int
}

const itemColumns = `id, user_id, title, description, category, condition, value,
       location, trade_preference, status, owner_name, owner_email, created_at, updated_at`

const tradeColumns = `id, item_id, requester_id, owner_id, status, message,
       item_title, item_image_url, requester_name, created_at, updated_at`

const notificationColumns = `id, user_id, type, title, message, is_read,
       trade_id, item_id, from_user_id, from_user_name, created_at, updated_at`

// buildItemQuery строит SQL выборки объявлений. Второй результат
// сообщает, отсортирован ли результат на стороне базы
func buildItemQuery(f ItemFilter) (string, []interface{}, bool) {
	var conds []string
	var cols []string
	var args []interface{}

	addEq := func(col string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
		cols = append(cols, col)
	}

	if f.OwnerID != nil {
		addEq("user_id", *f.OwnerID)
	}
	if f.Category != "" {
		addEq("category", f.Category)
	}
	if f.Condition != "" {
		addEq("condition", f.Condition)
	}
	if f.Status != "" {
		addEq("status", f.Status)
	}

	query := "SELECT " + itemColumns + " FROM items"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	serverSorted := hasSortIndex("items", cols)
	if serverSorted {
		query += " ORDER BY created_at DESC, id DESC"
	}

	if f.Limit > 0 {
		limit := f.Limit
		if !serverSorted && f.Offset > 0 {
			// Без ORDER BY базе нельзя отдать и OFFSET: страницы
			// неупорядоченного набора недетерминированы. Добираем
			// offset строк и пропускаем их после сортировки в памяти
			limit += f.Offset
		}
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 && serverSorted {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return query, args, serverSorted
}

// paginate применяет offset и limit к уже отсортированному срезу
func paginate[T any](records []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(records) {
			return nil
		}
		records = records[offset:]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// buildTradeQuery строит SQL выборки обменов. Фильтр по участнику —
// это ИЛИ по двум колонкам, составного индекса под него нет,
// поэтому сортировка всегда выполняется в памяти
func buildTradeQuery(f TradeFilter) (string, []interface{}, bool) {
	var conds []string
	var args []interface{}

	if f.Participant != nil {
		args = append(args, *f.Participant)
		conds = append(conds, fmt.Sprintf("(requester_id = $%d OR owner_id = $%d)", len(args), len(args)))
	}
	if f.ItemID != nil {
		args = append(args, *f.ItemID)
		conds = append(conds, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := "SELECT " + tradeColumns + " FROM trades"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	serverSorted := hasSortIndex("trades", nil)
	if serverSorted {
		query += " ORDER BY created_at DESC, id DESC"
	}

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return query, args, serverSorted
}

// buildNotificationQuery строит SQL выборки уведомлений
func buildNotificationQuery(f NotificationFilter) (string, []interface{}, bool) {
	var conds []string
	var cols []string
	var args []interface{}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
		cols = append(cols, "user_id")
	}
	if f.Unread {
		conds = append(conds, "is_read = false")
		cols = append(cols, "is_read")
	}

	query := "SELECT " + notificationColumns + " FROM notifications"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	serverSorted := hasSortIndex("notifications", cols)
	if serverSorted {
		query += " ORDER BY created_at DESC, id DESC"
	}

	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return query, args, serverSorted
}

// buildUpdate строит частичное обновление: затрагиваются только
// переданные поля из белого списка, updated_at проставляется всегда
func buildUpdate(table string, id uuid.UUID, fields map[string]interface{}, allowed map[string]bool) (string, []interface{}, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("нет полей для обновления")
	}

	// Сортируем имена полей для детерминированного SQL
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !allowed[name] {
			return "", nil, fmt.Errorf("поле %q нельзя обновить в таблице %s", name, table)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var sets []string
	var args []interface{}
	for _, name := range names {
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", name, len(args)))
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))

	return query, args, nil
}
