package content

import (
	"time"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type EventFilter struct {
	Upcoming bool      // Only events that have not ended
	Now      time.Time // Reference time for Upcoming, defaults to time.Now
	Page
}

type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	StartsAt    *time.Time
	EndsAt      *time.Time
	Capacity    *int
	ImageURL    *string
}

// ListEvents returns events by start time.
func (r *Repository) ListEvents(filter EventFilter) ([]entities.Event, int64, error) {
	query := r.db.Model(&entities.Event{})
	if filter.Upcoming {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = query.Where("(ends_at IS NOT NULL AND ends_at >= ?) OR (ends_at IS NULL AND starts_at >= ?)", now, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []entities.Event
	err := filter.Page.apply(query.Order("starts_at ASC")).Find(&events).Error
	return events, total, err
}

func (r *Repository) GetEvent(id uint) (*entities.Event, error) {
	var event entities.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *Repository) CreateEvent(event *entities.Event) error {
	return r.db.Create(event).Error
}

func (r *Repository) UpdateEvent(id uint, update EventUpdate) (*entities.Event, error) {
	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Location != nil {
		changes["location"] = *update.Location
	}
	if update.StartsAt != nil {
		changes["starts_at"] = *update.StartsAt
	}
	if update.EndsAt != nil {
		changes["ends_at"] = *update.EndsAt
	}
	if update.Capacity != nil {
		changes["capacity"] = *update.Capacity
	}
	if update.ImageURL != nil {
		changes["image_url"] = *update.ImageURL
	}

	var event entities.Event
	if err := r.updates(&event, id, changes); err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *Repository) DeleteEvent(id uint) error {
	return r.delete(&entities.Event{}, id)
}
