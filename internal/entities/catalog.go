package entities

import (
	"time"

	"gorm.io/gorm"
)

type BookStatus string

const (
	BookStatusAvailable     BookStatus = "available"
	BookStatusFullyReserved BookStatus = "fully-reserved"
	BookStatusMaintenance   BookStatus = "maintenance"
)

// Valid reports whether s is one of the known book statuses.
func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusFullyReserved, BookStatusMaintenance:
		return true
	}
	return false
}

type Author struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"index;size:256;not null" json:"name"`
	Nationality string         `gorm:"size:100" json:"nationality,omitempty"`
	Biography   string         `gorm:"type:text" json:"biography,omitempty"`
	BirthYear   int            `json:"birth_year,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	Color       string         `gorm:"size:10" json:"color,omitempty"` // Hex color code
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Book is a catalog entry. CopiesAvailable is only changed by the reservation
// lifecycle and always stays within [0, TotalCopies].
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"index;size:512;not null" json:"title"`
	ISBN            string         `gorm:"index;size:20" json:"isbn,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	PublicationYear int            `json:"publication_year,omitempty"`
	CoverURL        string         `gorm:"size:2048" json:"cover_url,omitempty"`
	Language        string         `gorm:"size:20" json:"language,omitempty"`
	AuthorID        *uint          `gorm:"index" json:"author_id,omitempty"`
	Author          *Author        `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	CategoryID      *uint          `gorm:"index" json:"category_id,omitempty"`
	Category        *Category      `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	TotalCopies     int            `gorm:"not null;default:1" json:"total_copies"`
	CopiesAvailable int            `gorm:"not null;default:1" json:"copies_available"`
	Status          BookStatus     `gorm:"index;size:20;not null;default:'available'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsReservable reports whether a new reservation may target the book.
func (b *Book) IsReservable() bool {
	return b.Status == BookStatusAvailable && b.CopiesAvailable > 0
}
