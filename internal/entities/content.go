package entities

import (
	"time"

	"gorm.io/gorm"
)

// ReadingGroup is a recurring book club hosted by the center.
type ReadingGroup struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Schedule    string         `gorm:"size:200" json:"schedule,omitempty"` // Free text, e.g. "first Tuesday, 18:00"
	MaxMembers  int            `json:"max_members,omitempty"`
	Active      bool           `gorm:"not null" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Event struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:300;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Location    string         `gorm:"size:300" json:"location,omitempty"`
	StartsAt    time.Time      `gorm:"index;not null" json:"starts_at"`
	EndsAt      *time.Time     `json:"ends_at,omitempty"`
	Capacity    int            `json:"capacity,omitempty"`
	ImageURL    string         `gorm:"size:2048" json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type News struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:300;not null" json:"title"`
	Summary     string         `gorm:"size:1000" json:"summary,omitempty"`
	Body        string         `gorm:"type:text" json:"body"`
	ImageURL    string         `gorm:"size:2048" json:"image_url,omitempty"`
	Published   bool           `gorm:"index;not null;default:false" json:"published"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	AuthorID    *uint          `json:"author_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (News) TableName() string {
	return "news"
}

type ContactMessage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:200;not null" json:"name"`
	Email     string     `gorm:"size:255;not null" json:"email"`
	Subject   string     `gorm:"size:300" json:"subject,omitempty"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Read      bool       `gorm:"index;not null;default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

type NewsletterSubscriber struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name           string     `gorm:"size:200" json:"name,omitempty"`
	Token          string     `gorm:"uniqueIndex;size:36;not null" json:"-"` // Unsubscribe token
	Active         bool       `gorm:"index;not null;default:true" json:"active"`
	UnsubscribedAt *time.Time `json:"unsubscribed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
