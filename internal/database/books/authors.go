package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type AuthorUpdate struct {
	Name        *string
	Nationality *string
	Biography   *string
	BirthYear   *int
}

// ListAuthors returns authors ordered by name, optionally filtered by a name
// fragment.
func (r *Repository) ListAuthors(q string, limit, offset int) ([]entities.Author, int64, error) {
	query := r.db.Model(&entities.Author{})
	if q != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(q))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset = normalizePage(limit, offset)
	var authors []entities.Author
	err := query.Order("name ASC").Limit(limit).Offset(offset).Find(&authors).Error
	return authors, total, err
}

func (r *Repository) GetAuthor(id uint) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *Repository) CreateAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

func (r *Repository) UpdateAuthor(id uint, update AuthorUpdate) (*entities.Author, error) {
	author, err := r.GetAuthor(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Nationality != nil {
		changes["nationality"] = *update.Nationality
	}
	if update.Biography != nil {
		changes["biography"] = *update.Biography
	}
	if update.BirthYear != nil {
		changes["birth_year"] = *update.BirthYear
	}
	if len(changes) > 0 {
		if err := r.db.Model(author).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return r.GetAuthor(id)
}

// DeleteAuthor soft-deletes an author and detaches it from its books.
func (r *Repository) DeleteAuthor(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var author entities.Author
		if err := tx.First(&author, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Book{}).Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&author).Error
	})
}
