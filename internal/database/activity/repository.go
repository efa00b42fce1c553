package activity

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Filter narrows an activity listing. Zero values are ignored.
type Filter struct {
	UserID     uint
	Type       entities.ActivityType
	EntityType string
	EntityID   uint
	Since      time.Time
	Limit      int
	Offset     int
}

// Log saves an activity entry to the database.
func (r *Repository) Log(entry *entities.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// List retrieves paginated activity entries, ordered by most recent first.
func (r *Repository) List(filter Filter) ([]entities.ActivityLog, int64, error) {
	var entries []entities.ActivityLog
	var total int64

	query := r.db.Model(&entities.ActivityLog{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID > 0 {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at > ?", filter.Since)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}

// DeleteOlderThan removes entries older than the specified time.
// Returns the number of deleted entries.
func (r *Repository) DeleteOlderThan(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.ActivityLog{})
	return result.RowsAffected, result.Error
}

// Get retrieves a single activity entry by ID.
func (r *Repository) Get(id uint) (*entities.ActivityLog, error) {
	var entry entities.ActivityLog
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
