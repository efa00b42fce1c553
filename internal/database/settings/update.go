package settings

import (
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// Update lists every administrator-editable parameter. Nil fields are left
// unchanged.
type Update struct {
	OpenSunday    *bool
	OpenMonday    *bool
	OpenTuesday   *bool
	OpenWednesday *bool
	OpenThursday  *bool
	OpenFriday    *bool
	OpenSaturday  *bool

	MaxReservationsPerDay  *int
	MaxReservationsPerSlot *int

	AdminNotificationEmail *string
	CenterName             *string
}

type change struct {
	key       string
	value     string
	paramType entities.ParameterType
}

func (u Update) changes() []change {
	var out []change
	days := []*bool{u.OpenSunday, u.OpenMonday, u.OpenTuesday, u.OpenWednesday, u.OpenThursday, u.OpenFriday, u.OpenSaturday}
	for i, open := range days {
		if open != nil {
			out = append(out, change{entities.OpeningDayKeys[i], strconv.FormatBool(*open), entities.ParameterTypeBoolean})
		}
	}
	if u.MaxReservationsPerDay != nil {
		out = append(out, change{entities.ParamMaxReservationsPerDay, strconv.Itoa(*u.MaxReservationsPerDay), entities.ParameterTypeNumber})
	}
	if u.MaxReservationsPerSlot != nil {
		out = append(out, change{entities.ParamMaxReservationsPerSlot, strconv.Itoa(*u.MaxReservationsPerSlot), entities.ParameterTypeNumber})
	}
	if u.AdminNotificationEmail != nil {
		out = append(out, change{entities.ParamAdminNotificationEmail, *u.AdminNotificationEmail, entities.ParameterTypeString})
	}
	if u.CenterName != nil {
		out = append(out, change{entities.ParamCenterName, *u.CenterName, entities.ParameterTypeString})
	}
	return out
}

// Apply writes all provided fields in one transaction and returns the keys
// that were written.
func (r *Repository) Apply(update Update) ([]string, error) {
	changes := update.changes()
	keys := make([]string, 0, len(changes))
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			if err := set(tx, c.key, c.value, c.paramType); err != nil {
				return err
			}
			keys = append(keys, c.key)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Public is the subset of parameters visitors may read.
type Public struct {
	CenterName             string          `json:"center_name"`
	OpeningDays            map[string]bool `json:"opening_days"`
	MaxReservationsPerDay  *int            `json:"max_reservations_per_day"`
	MaxReservationsPerSlot *int            `json:"max_reservations_per_slot"`
}

// Public returns opening days keyed by lower-case weekday name and the
// capacity limits. A missing or unparseable limit is reported as nil.
func (r *Repository) Public() (*Public, error) {
	params, err := r.List()
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Key] = p.Value
	}

	pub := &Public{
		CenterName:             values[entities.ParamCenterName],
		OpeningDays:            make(map[string]bool, 7),
		MaxReservationsPerDay:  parseLimit(values[entities.ParamMaxReservationsPerDay]),
		MaxReservationsPerSlot: parseLimit(values[entities.ParamMaxReservationsPerSlot]),
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		pub.OpeningDays[weekdayName(day)] = ParseBool(values[entities.OpeningDayKeys[day]])
	}
	return pub, nil
}

func parseLimit(value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func weekdayName(day time.Weekday) string {
	name := day.String()
	b := []byte(name)
	b[0] += 'a' - 'A'
	return string(b)
}
