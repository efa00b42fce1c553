package entities

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusValidated ReservationStatus = "validated"
	ReservationStatusRejected  ReservationStatus = "rejected"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// ActiveReservationStatuses hold a slot for their (book, date, slot) triple.
var ActiveReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusValidated,
}

// IsTerminal reports whether no further transition may leave this status.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusRejected, ReservationStatusCompleted, ReservationStatusCancelled:
		return true
	}
	return false
}

type Slot string

const (
	SlotMorning   Slot = "morning"
	SlotAfternoon Slot = "afternoon"
)

// Slots lists the daily visiting windows in display order.
var Slots = []Slot{SlotMorning, SlotAfternoon}

func (s Slot) Valid() bool {
	return s == SlotMorning || s == SlotAfternoon
}

// DateLayout is the storage and wire format of a visit date.
const DateLayout = "2006-01-02"

type Reservation struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	ReservationNumber string            `gorm:"uniqueIndex;size:32;not null" json:"reservation_number"`
	VisitorName       string            `gorm:"size:200;not null" json:"visitor_name"`
	VisitorEmail      string            `gorm:"index;size:255;not null" json:"visitor_email"`
	VisitorPhone      string            `gorm:"size:32" json:"visitor_phone"`
	BookID            uint              `gorm:"index;not null" json:"book_id"`
	Book              *Book             `gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT" json:"book,omitempty"`
	DesiredDate       string            `gorm:"index;size:10;not null" json:"desired_date"`
	Slot              Slot              `gorm:"size:20;not null" json:"slot"`
	Comment           string            `gorm:"type:text" json:"comment,omitempty"`
	Status            ReservationStatus `gorm:"index;size:20;not null;default:'pending'" json:"status"`
	AdminNote         string            `gorm:"type:text" json:"admin_note,omitempty"`
	ValidatedByID     *uint             `gorm:"index" json:"validated_by_id,omitempty"`
	ValidatedBy       *User             `gorm:"foreignKey:ValidatedByID;constraint:OnDelete:SET NULL" json:"-"`
	ValidatedAt       *time.Time        `json:"validated_at,omitempty"`
	VisitedAt         *time.Time        `json:"visited_at,omitempty"`
	NotificationSent  bool              `gorm:"not null;default:false" json:"notification_sent"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
