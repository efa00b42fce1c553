package reservations

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Registry reads raw system parameters inside the caller's transaction, so
// that every check of one admission sees the same snapshot.
type Registry struct{}

// IsOpen reports whether the center accepts visits on the weekday. A missing
// flag means closed.
func (Registry) IsOpen(tx *gorm.DB, day time.Weekday) (bool, error) {
	value, ok, err := settings.NewRepository(tx).Get(entities.OpeningDayKeys[day])
	if err != nil || !ok {
		return false, err
	}
	return settings.ParseBool(strings.TrimSpace(value)), nil
}

// Limit returns a capacity limit. ok is false when the parameter is missing,
// empty, negative or not an integer, which means no limit is enforced.
func (Registry) Limit(tx *gorm.DB, key string) (limit int, ok bool, err error) {
	value, found, err := settings.NewRepository(tx).Get(key)
	if err != nil || !found {
		return 0, false, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(value))
	if convErr != nil || n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}
