package store

import (
	"sort"
	"strings"
)

// indexedSorts перечисляет комбинации колонок-фильтров, для которых
// в migrations/ есть составной индекс с сортировкой по created_at.
// Только такие выборки получают ORDER BY на стороне базы; все прочие
// комбинации читаются без сортировки и упорядочиваются в памяти.
// Список обязан совпадать с индексами в 000001_init_schema.up.sql
var indexedSorts = map[string]map[string]bool{
	"items": {
		"":        true, // idx_items_created
		"status":  true, // idx_items_status_created
		"user_id": true, // idx_items_user_created
	},
	// Выборка обменов идет по участнику (OR по двум колонкам),
	// составного индекса с сортировкой для нее нет
	"trades": {},
	// Уведомления индексированы только по получателю, без created_at
	"notifications": {},
}

// hasSortIndex отвечает, покрыта ли комбинация фильтров индексом
func hasSortIndex(table string, filterCols []string) bool {
	cols := append([]string(nil), filterCols...)
	sort.Strings(cols)
	return indexedSorts[table][strings.Join(cols, "+")]
}
