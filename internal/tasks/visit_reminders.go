package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

// ReminderSource lists reservations of a day.
type ReminderSource interface {
	ListForDate(date string, status entities.ReservationStatus) ([]entities.Reservation, error)
}

// SendVisitRemindersTask reminds visitors with a validated reservation on Date.
type SendVisitRemindersTask struct {
	Date string `json:"date"` // YYYY-MM-DD
}

// Config returns the queue configuration for reminder tasks. A run is not
// retried so that nobody receives the same reminder twice.
func (t SendVisitRemindersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueVisitReminders,
		MaxAttempts: 1,
		Timeout:     15 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// VisitRemindersProcessor creates a processor function for SendVisitRemindersTask.
// One failed reminder does not stop the others; the run fails only if no
// reminder could be sent.
func VisitRemindersProcessor(source ReminderSource, d NotificationDeliverer) backlite.QueueProcessor[SendVisitRemindersTask] {
	return func(ctx context.Context, task SendVisitRemindersTask) error {
		if source == nil || d == nil {
			return fmt.Errorf("visit reminders not configured")
		}
		if _, err := time.Parse(entities.DateLayout, task.Date); err != nil {
			return fmt.Errorf("invalid reminder date %q: %w", task.Date, err)
		}

		list, err := source.ListForDate(task.Date, entities.ReservationStatusValidated)
		if err != nil {
			return fmt.Errorf("list reservations for %s: %w", task.Date, err)
		}

		sent, failed := 0, 0
		for _, res := range list {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			n := reservations.Notification{Kind: reservations.KindVisitReminder, ReservationID: res.ID}
			if err := d.Deliver(ctx, n); err != nil {
				failed++
				log.Printf("[TASK] reminder for %s failed: %v", res.ReservationNumber, err)
				continue
			}
			sent++
		}

		log.Printf("[TASK] Sent %d visit reminders for %s (%d failed)", sent, task.Date, failed)
		if failed > 0 && sent == 0 {
			return fmt.Errorf("all %d reminders for %s failed", failed, task.Date)
		}
		return nil
	}
}

// NewVisitRemindersQueue creates a backlite queue for reminder tasks.
func NewVisitRemindersQueue(source ReminderSource, d NotificationDeliverer) backlite.Queue {
	return backlite.NewQueue(VisitRemindersProcessor(source, d))
}
