// Package settings provides database operations for system parameters.
//
// Values are stored as text. Reads through Get are raw; Typed and Apply
// convert between the stored text and the parameter's declared type.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	value, ok, err := repo.Get(entities.ParamMaxReservationsPerDay)
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the raw value of a parameter and whether it exists.
func (r *Repository) Get(key string) (string, bool, error) {
	var param entities.SystemParameter
	result := r.db.Where("key = ?", key).Limit(1).Find(&param)
	if result.Error != nil {
		return "", false, result.Error
	}
	if result.RowsAffected == 0 {
		return "", false, nil
	}
	return param.Value, true, nil
}

// List returns all parameters ordered by key.
func (r *Repository) List() ([]entities.SystemParameter, error) {
	var params []entities.SystemParameter
	err := r.db.Order("key ASC").Find(&params).Error
	return params, err
}

// Set creates or updates a parameter. A new parameter gets the given type; an
// existing parameter keeps its type.
func (r *Repository) Set(key, value string, paramType entities.ParameterType) error {
	return set(r.db, key, value, paramType)
}

func set(db *gorm.DB, key, value string, paramType entities.ParameterType) error {
	param := entities.SystemParameter{Key: key, Value: value, Type: paramType}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&param).Error
}

// Delete removes a parameter. For a limit this means no limit is enforced.
func (r *Repository) Delete(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.SystemParameter{}).Error
}

// ErrInvalidValue is returned when a stored value does not parse as its type.
var ErrInvalidValue = errors.New("invalid parameter value")

// Typed converts a stored parameter to its declared type.
func Typed(param entities.SystemParameter) (interface{}, error) {
	switch param.Type {
	case entities.ParameterTypeBoolean:
		return ParseBool(param.Value), nil
	case entities.ParameterTypeNumber:
		if param.Value == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, param.Key)
		}
		return n, nil
	case entities.ParameterTypeJSON:
		if param.Value == "" {
			return nil, nil
		}
		var v interface{}
		if err := json.Unmarshal([]byte(param.Value), &v); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidValue, param.Key)
		}
		return v, nil
	}
	return param.Value, nil
}

// ParseBool is the boolean rule shared with the admission checks: only "true"
// and "1" are true.
func ParseBool(value string) bool {
	return value == "true" || value == "1"
}
