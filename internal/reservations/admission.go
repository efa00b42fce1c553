package reservations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// pgDateLock serializes PostgreSQL admissions for one date, across books, so
// that two transactions cannot both pass the capacity counts. SQLite needs no
// statement: immediate transactions already serialize writers.
const pgDateLock = "SELECT pg_advisory_xact_lock(hashtext(?))"

// Request is a visitor's ask to consult a book on a given day and slot.
type Request struct {
	BookID       uint
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	DesiredDate  string // YYYY-MM-DD
	Slot         entities.Slot
	Comment      string
}

// Engine admits new reservations.
type Engine struct {
	db       *gorm.DB
	registry Registry
	opts     options
}

func NewEngine(db *gorm.DB, opts ...Option) *Engine {
	return &Engine{db: db, opts: buildOptions(opts)}
}

// Admit runs the admission checks in order and inserts the reservation as
// pending when all of them pass. The first failing check is returned as an
// *Error. Checks and insert share one transaction.
func (e *Engine) Admit(ctx context.Context, req Request) (*entities.Reservation, error) {
	visitDay, err := parseDate(req.DesiredDate)
	if err != nil {
		return nil, err
	}
	if !req.Slot.Valid() {
		return nil, newError(CodeValidation, "unknown slot %q", req.Slot)
	}

	var created entities.Reservation
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDate(tx, req.DesiredDate); err != nil {
			return err
		}
		if err := e.checkBook(tx, req.BookID); err != nil {
			return err
		}
		if err := e.checkSlotFree(tx, req); err != nil {
			return err
		}
		if err := e.checkOpen(tx, visitDay.Weekday()); err != nil {
			return err
		}
		if req.DesiredDate < e.opts.today() {
			return newError(CodeInvalidDate, "desired date %s is in the past", req.DesiredDate)
		}
		if err := e.checkCapacity(tx, req); err != nil {
			return err
		}

		created = entities.Reservation{
			ReservationNumber: e.opts.numbers.Next(),
			VisitorName:       strings.TrimSpace(req.VisitorName),
			VisitorEmail:      strings.TrimSpace(req.VisitorEmail),
			VisitorPhone:      strings.TrimSpace(req.VisitorPhone),
			BookID:            req.BookID,
			DesiredDate:       req.DesiredDate,
			Slot:              req.Slot,
			Comment:           req.Comment,
			Status:            entities.ReservationStatusPending,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, e.insertError(ctx, req, err)
	}

	log.Printf("Reservation %s admitted for book %d on %s (%s)",
		created.ReservationNumber, created.BookID, created.DesiredDate, created.Slot)

	e.opts.notifier.Notify(ctx, Notification{Kind: KindConfirmation, ReservationID: created.ID})
	e.opts.notifier.Notify(ctx, Notification{Kind: KindAdminAlert, ReservationID: created.ID})

	return &created, nil
}

// dateLockStatement returns the statement taken at the start of an admission
// for the given dialect, or "" when none is needed.
func dateLockStatement(dialect string) string {
	if dialect == "postgres" {
		return pgDateLock
	}
	return ""
}

func lockDate(tx *gorm.DB, date string) error {
	stmt := dateLockStatement(tx.Dialector.Name())
	if stmt == "" {
		return nil
	}
	if err := tx.Exec(stmt, date).Error; err != nil {
		return fmt.Errorf("failed to lock reservations for %s: %w", date, err)
	}
	return nil
}

// insertError reports a uniqueness failure caused by a concurrent admission
// for the same book, date and slot as a booking conflict. Any other error,
// including a reservation number collision, is returned unchanged.
func (e *Engine) insertError(ctx context.Context, req Request, err error) error {
	var domainErr *Error
	if errors.As(err, &domainErr) || !database.IsDuplicateEntry(err) {
		return err
	}
	if conflict := e.checkSlotFree(e.db.WithContext(ctx), req); conflict != nil {
		var taken *Error
		if errors.As(conflict, &taken) {
			return taken
		}
	}
	return err
}

func (e *Engine) checkBook(tx *gorm.DB, bookID uint) error {
	var book entities.Book
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(CodeBookNotAvailable, "book %d does not exist", bookID)
	}
	if err != nil {
		return err
	}
	if !book.IsReservable() {
		return newError(CodeBookNotAvailable, "book %q is not available for reservation", book.Title)
	}
	return nil
}

func (e *Engine) checkSlotFree(tx *gorm.DB, req Request) error {
	var count int64
	err := tx.Model(&entities.Reservation{}).
		Where("book_id = ? AND desired_date = ? AND slot = ? AND status IN ?",
			req.BookID, req.DesiredDate, req.Slot, entities.ActiveReservationStatuses).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return newError(CodeBookingConflict, "book already reserved on %s (%s)", req.DesiredDate, req.Slot)
	}
	return nil
}

func (e *Engine) checkOpen(tx *gorm.DB, day time.Weekday) error {
	open, err := e.registry.IsOpen(tx, day)
	if err != nil {
		return err
	}
	if !open {
		return newError(CodeClosedDay, "the center is closed on %s", day)
	}
	return nil
}

func (e *Engine) checkCapacity(tx *gorm.DB, req Request) error {
	if limit, ok, err := e.registry.Limit(tx, entities.ParamMaxReservationsPerDay); err != nil {
		return err
	} else if ok {
		count, err := countNotCancelled(tx, req.DesiredDate, "")
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return newError(CodeDailyLimitReached, "daily limit of %d reservations reached for %s", limit, req.DesiredDate)
		}
	}

	if limit, ok, err := e.registry.Limit(tx, entities.ParamMaxReservationsPerSlot); err != nil {
		return err
	} else if ok {
		count, err := countNotCancelled(tx, req.DesiredDate, req.Slot)
		if err != nil {
			return err
		}
		if count >= int64(limit) {
			return newError(CodeSlotLimitReached, "limit of %d reservations reached for %s (%s)", limit, req.DesiredDate, req.Slot)
		}
	}
	return nil
}

// countNotCancelled counts reservations for a date, across all books, that
// still take up capacity. An empty slot counts the whole day.
func countNotCancelled(tx *gorm.DB, date string, slot entities.Slot) (int64, error) {
	query := tx.Model(&entities.Reservation{}).
		Where("desired_date = ? AND status <> ?", date, entities.ReservationStatusCancelled)
	if slot != "" {
		query = query.Where("slot = ?", slot)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

// parseDate validates a YYYY-MM-DD civil date.
func parseDate(value string) (time.Time, error) {
	day, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		return time.Time{}, newError(CodeValidation, "desired date %q is not a YYYY-MM-DD date", value)
	}
	return day, nil
}
