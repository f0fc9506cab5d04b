package store

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
)

// record — запись с ключом сортировки "сначала новые"
type record interface {
	SortKey() (time.Time, uuid.UUID)
}

// SortNewestFirst сортирует записи по убыванию времени создания.
// Это резервный путь для выборок, не покрытых составным индексом:
// результат обязан побайтово совпадать с серверной сортировкой
// ORDER BY created_at DESC, id DESC. Запись без отметки времени
// (нулевое время) считается самой старой
func SortNewestFirst[T record](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, idi := records[i].SortKey()
		tj, idj := records[j].SortKey()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return bytes.Compare(idi[:], idj[:]) > 0
	})
}
