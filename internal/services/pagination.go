package services

import "gorm.io/gorm"

const (
	DefaultPageSize = 6
	MaxPageSize     = 100
)

// Page selects a window of a list, numbered from 1
type Page struct {
	Number int
	Size   int
}

// NewPage clamps user supplied values. A non-positive size falls back to defaultSize.
func NewPage(number, size, defaultSize int) Page {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if number < 1 {
		number = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// HasNext reports whether another page exists after this one
func (p Page) HasNext(total int64) bool {
	return int64(p.Offset()+p.Size) < total
}

// count runs a COUNT over the filtered query without disturbing it
func count[T any](q *gorm.DB) (int64, error) {
	var total int64
	err := q.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error
	return total, err
}

// paginate counts the rows matched by q, then loads the requested window.
// Preloads and ordering must be applied by the caller through load.
func paginate[T any](q *gorm.DB, page Page, load func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	total, err := count[T](q)
	if err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}

	tx := q.Session(&gorm.Session{})
	if load != nil {
		tx = load(tx)
	}
	if err := tx.Offset(page.Offset()).Limit(page.Size).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
