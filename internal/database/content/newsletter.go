package content

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// Subscribe registers an email for the newsletter. Subscribing an address
// that had unsubscribed reactivates it with a fresh token; subscribing an
// active address returns the existing row.
func (r *Repository) Subscribe(email, name string) (*entities.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var sub entities.NewsletterSubscriber
	err := r.db.Where("email = ?", email).First(&sub).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = entities.NewsletterSubscriber{
			Email:  email,
			Name:   name,
			Token:  uuid.NewString(),
			Active: true,
		}
		if err := r.db.Create(&sub).Error; err != nil {
			return nil, err
		}
		return &sub, nil
	case err != nil:
		return nil, err
	}

	if sub.Active {
		return &sub, nil
	}
	token := uuid.NewString()
	changes := map[string]interface{}{
		"active":          true,
		"token":           token,
		"unsubscribed_at": nil,
	}
	if name != "" {
		changes["name"] = name
		sub.Name = name
	}
	if err := r.db.Model(&sub).Updates(changes).Error; err != nil {
		return nil, err
	}
	sub.Active = true
	sub.Token = token
	sub.UnsubscribedAt = nil
	return &sub, nil
}

// Unsubscribe deactivates the subscription owning token.
func (r *Repository) Unsubscribe(token string) (*entities.NewsletterSubscriber, error) {
	var sub entities.NewsletterSubscriber
	if err := r.db.Where("token = ?", token).First(&sub).Error; err != nil {
		return nil, err
	}
	if !sub.Active {
		return &sub, nil
	}
	now := time.Now()
	if err := r.db.Model(&sub).Updates(map[string]interface{}{"active": false, "unsubscribed_at": now}).Error; err != nil {
		return nil, err
	}
	sub.Active = false
	sub.UnsubscribedAt = &now
	return &sub, nil
}

// ListSubscribers returns subscribers by email. With activeOnly, cancelled
// subscriptions are skipped.
func (r *Repository) ListSubscribers(activeOnly bool, page Page) ([]entities.NewsletterSubscriber, int64, error) {
	query := r.db.Model(&entities.NewsletterSubscriber{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []entities.NewsletterSubscriber
	err := page.apply(query.Order("email ASC")).Find(&subs).Error
	return subs, total, err
}
