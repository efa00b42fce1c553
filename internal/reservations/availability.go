package reservations

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/entities"
)

// SlotAvailability describes one visiting window of a day for a book.
type SlotAvailability struct {
	Slot entities.Slot `json:"slot"`
	// BookTaken is true when the book already has an active reservation in
	// this slot.
	BookTaken bool  `json:"book_taken"`
	Reserved  int64 `json:"reserved"`
	// Remaining is nil when no per-slot limit is configured.
	Remaining *int64 `json:"remaining"`
	Available bool   `json:"available"`
}

// Availability is the outcome the admission checks would reach for each slot
// of a day, without inserting anything.
type Availability struct {
	BookID         uint               `json:"book_id"`
	Date           string             `json:"date"`
	Open           bool               `json:"open"`
	Past           bool               `json:"past"`
	BookReservable bool               `json:"book_reservable"`
	DailyReserved  int64              `json:"daily_reserved"`
	DailyRemaining *int64             `json:"daily_remaining"`
	Slots          []SlotAvailability `json:"slots"`
}

// Availability reports, for each slot of date, whether a request for bookID
// would currently be admitted.
func (e *Engine) Availability(ctx context.Context, bookID uint, date string) (*Availability, error) {
	visitDay, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	out := &Availability{BookID: bookID, Date: date, Past: date < e.opts.today()}
	db := e.db.WithContext(ctx)

	var book entities.Book
	err = db.First(&book, bookID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, newError(CodeBookNotAvailable, "book %d does not exist", bookID)
	case err != nil:
		return nil, err
	}
	out.BookReservable = book.IsReservable()

	if out.Open, err = e.registry.IsOpen(db, visitDay.Weekday()); err != nil {
		return nil, err
	}

	if out.DailyReserved, err = countNotCancelled(db, date, ""); err != nil {
		return nil, err
	}
	dayFull := false
	if limit, ok, err := e.registry.Limit(db, entities.ParamMaxReservationsPerDay); err != nil {
		return nil, err
	} else if ok {
		left := remaining(limit, out.DailyReserved)
		out.DailyRemaining = &left
		dayFull = left == 0
	}

	slotLimit, slotLimited, err := e.registry.Limit(db, entities.ParamMaxReservationsPerSlot)
	if err != nil {
		return nil, err
	}

	for _, slot := range entities.Slots {
		sa := SlotAvailability{Slot: slot}

		var taken int64
		err := db.Model(&entities.Reservation{}).
			Where("book_id = ? AND desired_date = ? AND slot = ? AND status IN ?",
				bookID, date, slot, entities.ActiveReservationStatuses).
			Count(&taken).Error
		if err != nil {
			return nil, err
		}
		sa.BookTaken = taken > 0

		if sa.Reserved, err = countNotCancelled(db, date, slot); err != nil {
			return nil, err
		}
		slotFull := false
		if slotLimited {
			left := remaining(slotLimit, sa.Reserved)
			sa.Remaining = &left
			slotFull = left == 0
		}

		sa.Available = out.BookReservable && !sa.BookTaken && out.Open && !out.Past && !dayFull && !slotFull
		out.Slots = append(out.Slots, sa)
	}
	return out, nil
}

func remaining(limit int, used int64) int64 {
	left := int64(limit) - used
	if left < 0 {
		return 0
	}
	return left
}
