// Package books provides database operations for the catalog: books, authors
// and categories.
//
// Copy counters are owned by the reservation lifecycle. The only catalog
// operation that touches CopiesAvailable is a change of TotalCopies, which
// shifts both counters by the same amount.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBook(123)
package books

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readingcenter/internal/entities"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	// ErrHasActiveReservations is returned when deleting a book that still has
	// pending or validated reservations.
	ErrHasActiveReservations = errors.New("book has active reservations")
	// ErrCopiesInUse is returned when lowering TotalCopies below the number of
	// copies committed to validated reservations.
	ErrCopiesInUse = errors.New("total copies lower than copies in use")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type BookFilter struct {
	Query      string // Matches title or ISBN
	AuthorID   uint
	CategoryID uint
	Status     entities.BookStatus
	Language   string
	Limit      int
	Offset     int
}

// BookUpdate lists the mutable columns of a book. Nil fields are left as is.
type BookUpdate struct {
	Title           *string
	ISBN            *string
	Description     *string
	PublicationYear *int
	CoverURL        *string
	Language        *string
	AuthorID        *uint
	CategoryID      *uint
	TotalCopies     *int
	Status          *entities.BookStatus
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// ListBooks returns one page of books matching the filter and the total
// number of matches.
func (r *Repository) ListBooks(filter BookFilter) ([]entities.Book, int64, error) {
	query := r.db.Model(&entities.Book{})
	if filter.Query != "" {
		pattern := likePattern(filter.Query)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(isbn) LIKE ?", pattern, pattern)
	}
	if filter.AuthorID > 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Language != "" {
		query = query.Where("language = ?", filter.Language)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	var books []entities.Book
	err := query.Preload("Author").Preload("Category").
		Order("title ASC, id ASC").
		Limit(limit).Offset(offset).
		Find(&books).Error
	return books, total, err
}

// GetBook retrieves a book by ID with its author and category.
func (r *Repository) GetBook(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Category").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a book with all of its copies available.
func (r *Repository) CreateBook(book *entities.Book) error {
	if book.TotalCopies < 0 {
		book.TotalCopies = 0
	}
	book.CopiesAvailable = book.TotalCopies
	if book.Status == "" {
		book.Status = entities.BookStatusAvailable
	}
	if book.Status == entities.BookStatusAvailable && book.CopiesAvailable == 0 {
		book.Status = entities.BookStatusFullyReserved
	}
	return r.db.Create(book).Error
}

// UpdateBook applies a partial update and returns the refreshed book.
func (r *Repository) UpdateBook(id uint, update BookUpdate) (*entities.Book, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, id).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if update.Title != nil {
			changes["title"] = *update.Title
		}
		if update.ISBN != nil {
			changes["isbn"] = *update.ISBN
		}
		if update.Description != nil {
			changes["description"] = *update.Description
		}
		if update.PublicationYear != nil {
			changes["publication_year"] = *update.PublicationYear
		}
		if update.CoverURL != nil {
			changes["cover_url"] = *update.CoverURL
		}
		if update.Language != nil {
			changes["language"] = *update.Language
		}
		if update.AuthorID != nil {
			changes["author_id"] = nullableID(*update.AuthorID)
		}
		if update.CategoryID != nil {
			changes["category_id"] = nullableID(*update.CategoryID)
		}
		if update.TotalCopies != nil {
			inUse := book.TotalCopies - book.CopiesAvailable
			if *update.TotalCopies < inUse {
				return ErrCopiesInUse
			}
			available := *update.TotalCopies - inUse
			changes["total_copies"] = *update.TotalCopies
			changes["copies_available"] = available
			switch {
			case available == 0 && book.Status == entities.BookStatusAvailable:
				changes["status"] = entities.BookStatusFullyReserved
			case available > 0 && book.Status == entities.BookStatusFullyReserved:
				changes["status"] = entities.BookStatusAvailable
			}
		}
		if update.Status != nil {
			changes["status"] = *update.Status
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&book).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetBook(id)
}

// DeleteBook soft-deletes a book that no active reservation references.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		var active int64
		err := tx.Model(&entities.Reservation{}).
			Where("book_id = ? AND status IN ?", id, entities.ActiveReservationStatuses).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrHasActiveReservations
		}
		return tx.Delete(&book).Error
	})
}

// nullableID maps 0 to NULL so that a reference can be cleared.
func nullableID(id uint) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
