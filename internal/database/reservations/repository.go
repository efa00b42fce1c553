// Package reservations provides read access to reservations.
//
// Reservations are created and moved between statuses only by the
// internal/reservations package, inside its own transactions. This repository
// serves listings, lookups and the bookkeeping of background tasks.
//
// # Usage
//
//	repo := reservations.NewRepository(db)
//	list, total, err := repo.List(reservations.Filter{Status: entities.ReservationStatusPending})
package reservations

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Repository handles reservation queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservations repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows a reservation listing. Zero values are ignored.
type Filter struct {
	Status   entities.ReservationStatus
	BookID   uint
	Email    string // Exact, case-insensitive match on the visitor email
	Slot     entities.Slot
	DateFrom string // Inclusive, YYYY-MM-DD
	DateTo   string // Inclusive, YYYY-MM-DD
	Query    string // Matches reservation number or visitor name
	Limit    int
	Offset   int
}

// List returns one page of reservations, newest first, with their books.
func (r *Repository) List(filter Filter) ([]entities.Reservation, int64, error) {
	query := r.db.Model(&entities.Reservation{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BookID > 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.Email != "" {
		query = query.Where("LOWER(visitor_email) = ?", strings.ToLower(strings.TrimSpace(filter.Email)))
	}
	if filter.Slot != "" {
		query = query.Where("slot = ?", filter.Slot)
	}
	if filter.DateFrom != "" {
		query = query.Where("desired_date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("desired_date <= ?", filter.DateTo)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Query)) + "%"
		query = query.Where("LOWER(reservation_number) LIKE ? OR LOWER(visitor_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	var list []entities.Reservation
	err := query.Preload("Book", unscopedBooks).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

// Get retrieves a reservation by ID with its book and the book's author.
func (r *Repository) Get(id uint) (*entities.Reservation, error) {
	var res entities.Reservation
	err := r.db.Preload("Book", unscopedBooks).Preload("Book.Author").First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetByNumber retrieves a reservation by its public reservation number.
func (r *Repository) GetByNumber(number string) (*entities.Reservation, error) {
	var res entities.Reservation
	err := r.db.Preload("Book", unscopedBooks).Where("reservation_number = ?", number).First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListForDate returns reservations for a visit date in the given status,
// ordered by slot.
func (r *Repository) ListForDate(date string, status entities.ReservationStatus) ([]entities.Reservation, error) {
	var list []entities.Reservation
	err := r.db.Preload("Book", unscopedBooks).
		Where("desired_date = ? AND status = ?", date, status).
		Order("slot ASC, id ASC").
		Find(&list).Error
	return list, err
}

// MarkNotificationSent records that the visitor confirmation was delivered.
func (r *Repository) MarkNotificationSent(id uint) error {
	return r.db.Model(&entities.Reservation{}).Where("id = ?", id).
		UpdateColumn("notification_sent", true).Error
}

// CountByStatus returns the number of reservations per status.
func (r *Repository) CountByStatus() (map[entities.ReservationStatus]int64, error) {
	type row struct {
		Status entities.ReservationStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&entities.Reservation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[entities.ReservationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// unscopedBooks keeps soft-deleted books visible on historical reservations.
func unscopedBooks(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
