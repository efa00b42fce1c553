package content

import (
	"github.com/mrlokans/readingcenter/internal/entities"
)

type GroupUpdate struct {
	Name        *string
	Description *string
	Schedule    *string
	MaxMembers  *int
	Active      *bool
}

// ListGroups returns reading groups by name. With activeOnly, inactive groups
// are skipped.
func (r *Repository) ListGroups(activeOnly bool, page Page) ([]entities.ReadingGroup, int64, error) {
	query := r.db.Model(&entities.ReadingGroup{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []entities.ReadingGroup
	err := page.apply(query.Order("name ASC")).Find(&groups).Error
	return groups, total, err
}

func (r *Repository) GetGroup(id uint) (*entities.ReadingGroup, error) {
	var group entities.ReadingGroup
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *Repository) CreateGroup(group *entities.ReadingGroup) error {
	return r.db.Create(group).Error
}

func (r *Repository) UpdateGroup(id uint, update GroupUpdate) (*entities.ReadingGroup, error) {
	changes := map[string]interface{}{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Description != nil {
		changes["description"] = *update.Description
	}
	if update.Schedule != nil {
		changes["schedule"] = *update.Schedule
	}
	if update.MaxMembers != nil {
		changes["max_members"] = *update.MaxMembers
	}
	if update.Active != nil {
		changes["active"] = *update.Active
	}

	var group entities.ReadingGroup
	if err := r.updates(&group, id, changes); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *Repository) DeleteGroup(id uint) error {
	return r.delete(&entities.ReadingGroup{}, id)
}
