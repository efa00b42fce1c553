package entities

import (
	"time"
)

type ParameterType string

const (
	ParameterTypeString  ParameterType = "string"
	ParameterTypeNumber  ParameterType = "number"
	ParameterTypeBoolean ParameterType = "boolean"
	ParameterTypeJSON    ParameterType = "json"
)

// SystemParameter is a raw key/value setting. Value is stored as text and
// interpreted according to Type only at the settings boundary.
type SystemParameter struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Key         string        `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value       string        `gorm:"type:text" json:"value"`
	Type        ParameterType `gorm:"size:20;not null;default:'string'" json:"type"`
	Description string        `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (SystemParameter) TableName() string {
	return "system_parameters"
}

// Known parameter keys
const (
	// Opening day flags, one per weekday
	ParamOpenSunday    = "open_sunday"
	ParamOpenMonday    = "open_monday"
	ParamOpenTuesday   = "open_tuesday"
	ParamOpenWednesday = "open_wednesday"
	ParamOpenThursday  = "open_thursday"
	ParamOpenFriday    = "open_friday"
	ParamOpenSaturday  = "open_saturday"

	// Capacity limits
	ParamMaxReservationsPerDay  = "max_reservations_per_day"
	ParamMaxReservationsPerSlot = "max_reservations_per_slot"

	// Notifications
	ParamAdminNotificationEmail = "admin_notification_email"
	ParamCenterName             = "center_name"
)

// OpeningDayKeys is indexed by time.Weekday (Sunday=0 ... Saturday=6).
var OpeningDayKeys = [7]string{
	ParamOpenSunday,
	ParamOpenMonday,
	ParamOpenTuesday,
	ParamOpenWednesday,
	ParamOpenThursday,
	ParamOpenFriday,
	ParamOpenSaturday,
}
