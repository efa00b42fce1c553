// Package content provides database operations for the center's public
// content: reading groups, events, news, contact messages and newsletter
// subscriptions.
//
// # Usage
//
//	repo := content.NewRepository(db)
//	events, total, err := repo.ListEvents(content.EventFilter{Upcoming: true})
package content

import (
	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Repository handles all content database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new content repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	limit, offset := p.Limit, p.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return db.Limit(limit).Offset(offset)
}

// updates applies a column map to model and reports a missing row.
func (r *Repository) updates(model interface{}, id uint, changes map[string]interface{}) error {
	if err := r.db.First(model, id).Error; err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	if err := r.db.Model(model).Updates(changes).Error; err != nil {
		return err
	}
	return r.db.First(model, id).Error
}

func (r *Repository) delete(model interface{}, id uint) error {
	result := r.db.Delete(model, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
