package entities

import "time"

type ActivityType string

const (
	ActivityReservation ActivityType = "reservation"
	ActivityCatalog     ActivityType = "catalog"
	ActivityContent     ActivityType = "content"
	ActivityAuth        ActivityType = "auth"
	ActivitySettings    ActivityType = "settings"
	ActivityUsers       ActivityType = "users"
)

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusFailed  ActivityStatus = "failed"
)

// ActivityLog is one append-only entry of the administrative activity trail.
type ActivityLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      *uint          `gorm:"index" json:"user_id,omitempty"`
	Type        ActivityType   `gorm:"index;size:50" json:"type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "reservation_create", "book_delete"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	IPAddress   string         `gorm:"size:45" json:"ip_address,omitempty"`
	Status      ActivityStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
