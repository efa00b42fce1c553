package reservations

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// Wednesday 5 March 2025, 10:00 UTC
var fixedNow = time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

const nextMonday = "2025-03-10"

type fixture struct {
	db       *gorm.DB
	engine   *Engine
	manager  *Manager
	notifier *RecordingNotifier
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "reservations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notifier := &RecordingNotifier{}
	opts := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithNotifier(notifier),
	}
	return &fixture{
		db:       db.DB,
		engine:   NewEngine(db.DB, opts...),
		manager:  NewManager(db.DB, opts...),
		notifier: notifier,
	}
}

func (f *fixture) book(t *testing.T, copies int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           fmt.Sprintf("Book with %d copies", copies),
		TotalCopies:     copies,
		CopiesAvailable: copies,
		Status:          entities.BookStatusAvailable,
	}
	if copies == 0 {
		book.Status = entities.BookStatusFullyReserved
	}
	require.NoError(t, f.db.Create(book).Error)
	return book
}

func (f *fixture) reload(t *testing.T, book *entities.Book) *entities.Book {
	t.Helper()
	var fresh entities.Book
	require.NoError(t, f.db.First(&fresh, book.ID).Error)
	return &fresh
}

func (f *fixture) setParam(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, f.db.Model(&entities.SystemParameter{}).Where("key = ?", key).Update("value", value).Error)
}

func (f *fixture) deleteParam(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, f.db.Where("key = ?", key).Delete(&entities.SystemParameter{}).Error)
}

var seq atomic.Int64

// existing inserts a reservation directly, bypassing admission.
func (f *fixture) existing(t *testing.T, bookID uint, date string, slot entities.Slot, status entities.ReservationStatus) *entities.Reservation {
	t.Helper()
	res := &entities.Reservation{
		ReservationNumber: fmt.Sprintf("SEED-%d", seq.Add(1)),
		VisitorName:       "Seed",
		VisitorEmail:      "seed@example.com",
		BookID:            bookID,
		DesiredDate:       date,
		Slot:              slot,
		Status:            status,
	}
	require.NoError(t, f.db.Create(res).Error)
	return res
}

func (f *fixture) count(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entities.Reservation{}).Count(&n).Error)
	return n
}

func request(bookID uint, date string, slot entities.Slot) Request {
	return Request{
		BookID:       bookID,
		VisitorName:  "Ann Reader",
		VisitorEmail: "ann@example.com",
		VisitorPhone: "+33 1 23 45 67 89",
		DesiredDate:  date,
		Slot:         slot,
	}
}

func requireCode(t *testing.T, err error, want Code) {
	t.Helper()
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok, "expected a rejection code, got %v", err)
	require.Equal(t, want, code)
}
