package content

import (
	"time"

	"github.com/mrlokans/readingcenter/internal/entities"
)

func (r *Repository) CreateContact(msg *entities.ContactMessage) error {
	return r.db.Create(msg).Error
}

func (r *Repository) GetContact(id uint) (*entities.ContactMessage, error) {
	var msg entities.ContactMessage
	if err := r.db.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListContacts returns contact messages, newest first. With unreadOnly, read
// messages are skipped.
func (r *Repository) ListContacts(unreadOnly bool, page Page) ([]entities.ContactMessage, int64, error) {
	query := r.db.Model(&entities.ContactMessage{})
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []entities.ContactMessage
	err := page.apply(query.Order("created_at DESC, id DESC")).Find(&messages).Error
	return messages, total, err
}

// MarkContactRead flags a message as read. Marking it again keeps the first
// ReadAt.
func (r *Repository) MarkContactRead(id uint) (*entities.ContactMessage, error) {
	var msg entities.ContactMessage
	if err := r.db.First(&msg, id).Error; err != nil {
		return nil, err
	}
	if !msg.Read {
		now := time.Now()
		if err := r.db.Model(&msg).Updates(map[string]interface{}{"read": true, "read_at": now}).Error; err != nil {
			return nil, err
		}
		msg.Read = true
		msg.ReadAt = &now
	}
	return &msg, nil
}

func (r *Repository) DeleteContact(id uint) error {
	return r.delete(&entities.ContactMessage{}, id)
}
