package reservations

import (
	"context"
	"sync"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type NotificationKind string

const (
	// KindConfirmation acknowledges a new request to the visitor.
	KindConfirmation NotificationKind = "reservation_confirmation"
	// KindAdminAlert tells the center about a new request.
	KindAdminAlert NotificationKind = "reservation_admin_alert"
	// KindStatusUpdate tells the visitor their request was validated or rejected.
	KindStatusUpdate NotificationKind = "reservation_status_update"
	// KindVisitReminder reminds the visitor of a validated visit.
	KindVisitReminder NotificationKind = "reservation_visit_reminder"
)

// Notification is an event emitted after a reservation change commits. The
// consumer reloads the reservation by ID.
type Notification struct {
	Kind          NotificationKind           `json:"kind"`
	ReservationID uint                       `json:"reservation_id"`
	Status        entities.ReservationStatus `json:"status,omitempty"`
}

// Notifier hands notifications to a delivery mechanism. Implementations must
// not block on delivery and report failures only through their own logging.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

// RecordingNotifier keeps notifications in memory. Used by tests and by the
// seed command.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *RecordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// Sent returns a copy of the recorded notifications.
func (r *RecordingNotifier) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// Reset drops the recorded notifications.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
