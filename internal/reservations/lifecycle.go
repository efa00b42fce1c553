package reservations

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// StatusChange is an administrator's decision on a reservation.
type StatusChange struct {
	Status    entities.ReservationStatus
	AdminNote *string // Nil keeps the current note
	ActorID   *uint
}

// Manager moves reservations through their lifecycle.
type Manager struct {
	db   *gorm.DB
	opts options
}

func NewManager(db *gorm.DB, opts ...Option) *Manager {
	return &Manager{db: db, opts: buildOptions(opts)}
}

// inventoryEffect is the change a transition applies to the book's
// copies_available counter.
type inventoryEffect int

const (
	inventoryNone     inventoryEffect = 0
	inventoryTakeCopy inventoryEffect = -1
	inventoryGiveCopy inventoryEffect = 1
)

// transitions lists the allowed edges from non-terminal statuses.
var transitions = map[entities.ReservationStatus]map[entities.ReservationStatus]inventoryEffect{
	entities.ReservationStatusPending: {
		entities.ReservationStatusValidated: inventoryTakeCopy,
		entities.ReservationStatusRejected:  inventoryNone,
		entities.ReservationStatusCancelled: inventoryNone,
		entities.ReservationStatusCompleted: inventoryNone,
	},
	entities.ReservationStatusValidated: {
		entities.ReservationStatusCancelled: inventoryGiveCopy,
		entities.ReservationStatusRejected:  inventoryGiveCopy,
		entities.ReservationStatusCompleted: inventoryNone,
	},
}

// IsTargetStatus reports whether status may be requested by an administrator.
func IsTargetStatus(status entities.ReservationStatus) bool {
	switch status {
	case entities.ReservationStatusValidated, entities.ReservationStatusRejected,
		entities.ReservationStatusCompleted, entities.ReservationStatusCancelled:
		return true
	}
	return false
}

// Get returns a reservation with its book.
func (m *Manager) Get(ctx context.Context, id uint) (*entities.Reservation, error) {
	var res entities.Reservation
	err := m.db.WithContext(ctx).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(CodeNotFound, "reservation %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateStatus applies change to reservation id. The current status is read
// under lock and the status and inventory updates commit together. Requesting
// the status a reservation already has only refreshes the note and stamps.
func (m *Manager) UpdateStatus(ctx context.Context, id uint, change StatusChange) (*entities.Reservation, error) {
	if !IsTargetStatus(change.Status) {
		return nil, newError(CodeValidation, "status %q cannot be requested", change.Status)
	}

	var previous entities.ReservationStatus
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res entities.Reservation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&res, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(CodeNotFound, "reservation %d not found", id)
		}
		if err != nil {
			return err
		}
		previous = res.Status

		if res.Status != change.Status {
			effect, ok := transitions[res.Status][change.Status]
			if !ok {
				return newError(CodeInvalidTransition, "cannot move reservation from %s to %s", res.Status, change.Status)
			}
			if err := applyInventory(tx, res.BookID, effect); err != nil {
				return err
			}
		}

		now := m.opts.now()
		updates := map[string]interface{}{
			"status":          change.Status,
			"validated_at":    now,
			"validated_by_id": change.ActorID,
		}
		if change.AdminNote != nil {
			updates["admin_note"] = *change.AdminNote
		}
		if change.Status == entities.ReservationStatusCompleted && res.VisitedAt == nil {
			updates["visited_at"] = now
		}
		return tx.Model(&res).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if previous != change.Status {
		log.Printf("Reservation %d moved from %s to %s", id, previous, change.Status)
		if change.Status == entities.ReservationStatusValidated || change.Status == entities.ReservationStatusRejected {
			m.opts.notifier.Notify(ctx, Notification{Kind: KindStatusUpdate, ReservationID: id, Status: change.Status})
		}
	}

	return m.Get(ctx, id)
}

func applyInventory(tx *gorm.DB, bookID uint, effect inventoryEffect) error {
	switch effect {
	case inventoryTakeCopy:
		result := tx.Model(&entities.Book{}).
			Where("id = ? AND copies_available > 0", bookID).
			UpdateColumn("copies_available", gorm.Expr("copies_available - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(CodeBookNotAvailable, "no copy of book %d is left to validate this reservation", bookID)
		}
		return tx.Model(&entities.Book{}).
			Where("id = ? AND copies_available = 0 AND status = ?", bookID, entities.BookStatusAvailable).
			UpdateColumn("status", entities.BookStatusFullyReserved).Error

	case inventoryGiveCopy:
		result := tx.Model(&entities.Book{}).Unscoped().
			Where("id = ? AND copies_available < total_copies", bookID).
			UpdateColumn("copies_available", gorm.Expr("copies_available + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			log.Printf("Book %d already has all copies available, counter left unchanged", bookID)
			return nil
		}
		return tx.Model(&entities.Book{}).Unscoped().
			Where("id = ? AND copies_available > 0 AND status = ?", bookID, entities.BookStatusFullyReserved).
			UpdateColumn("status", entities.BookStatusAvailable).Error
	}
	return nil
}
