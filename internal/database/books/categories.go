package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// CategoryWithCount is a category together with the number of books filed
// under it.
type CategoryWithCount struct {
	entities.Category
	BookCount int64 `json:"book_count"`
}

func (r *Repository) ListCategories() ([]CategoryWithCount, error) {
	var categories []entities.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		CategoryID uint
		Count      int64
	}
	var rows []countRow
	err := r.db.Model(&entities.Book{}).
		Select("category_id, COUNT(*) AS count").
		Where("category_id IS NOT NULL").
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryWithCount{Category: c, BookCount: counts[c.ID]})
	}
	return result, nil
}

func (r *Repository) GetCategory(id uint) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) CreateCategory(category *entities.Category) error {
	return r.db.Create(category).Error
}

func (r *Repository) UpdateCategory(id uint, update CategoryUpdate) (*entities.Category, error) {
	category, err := r.GetCategory(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Color != nil {
		changes["color"] = *update.Color
	}
	if len(changes) > 0 {
		if err := r.db.Model(category).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return r.GetCategory(id)
}

// DeleteCategory removes a category and detaches it from its books. The row is
// hard-deleted so its unique name can be reused.
func (r *Repository) DeleteCategory(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category entities.Category
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&entities.Book{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&category).Error
	})
}
