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

// NotificationDeliverer renders and sends notifications.
type NotificationDeliverer interface {
	Deliver(ctx context.Context, n reservations.Notification) error
	DeliverContactAck(ctx context.Context, contactID uint) error
}

// SendNotificationTask delivers one reservation notification. It is attempted
// once; a failed delivery is kept for inspection but never retried.
type SendNotificationTask struct {
	Kind          reservations.NotificationKind `json:"kind"`
	ReservationID uint                          `json:"reservation_id"`
	Status        entities.ReservationStatus    `json:"status,omitempty"`
}

// Config returns the queue configuration for notification tasks.
func (t SendNotificationTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueSendNotification,
		MaxAttempts: 1,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SendNotificationProcessor creates a processor function for SendNotificationTask.
func SendNotificationProcessor(d NotificationDeliverer) backlite.QueueProcessor[SendNotificationTask] {
	return func(ctx context.Context, task SendNotificationTask) error {
		if d == nil {
			return fmt.Errorf("notification deliverer not configured")
		}

		n := reservations.Notification{Kind: task.Kind, ReservationID: task.ReservationID, Status: task.Status}
		if err := d.Deliver(ctx, n); err != nil {
			log.Printf("[TASK] %s for reservation %d failed: %v", task.Kind, task.ReservationID, err)
			return err
		}
		log.Printf("[TASK] Sent %s for reservation %d", task.Kind, task.ReservationID)
		return nil
	}
}

// NewSendNotificationQueue creates a backlite queue for notification tasks.
func NewSendNotificationQueue(d NotificationDeliverer) backlite.Queue {
	return backlite.NewQueue(SendNotificationProcessor(d))
}

// SendContactAckTask acknowledges a contact form message. Attempted once.
type SendContactAckTask struct {
	ContactID uint `json:"contact_id"`
}

// Config returns the queue configuration for contact acknowledgements.
func (t SendContactAckTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueSendContactAck,
		MaxAttempts: 1,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// SendContactAckProcessor creates a processor function for SendContactAckTask.
func SendContactAckProcessor(d NotificationDeliverer) backlite.QueueProcessor[SendContactAckTask] {
	return func(ctx context.Context, task SendContactAckTask) error {
		if d == nil {
			return fmt.Errorf("notification deliverer not configured")
		}
		if err := d.DeliverContactAck(ctx, task.ContactID); err != nil {
			log.Printf("[TASK] contact acknowledgement %d failed: %v", task.ContactID, err)
			return err
		}
		return nil
	}
}

// NewSendContactAckQueue creates a backlite queue for contact acknowledgements.
func NewSendContactAckQueue(d NotificationDeliverer) backlite.Queue {
	return backlite.NewQueue(SendContactAckProcessor(d))
}

// TaskEnqueuer saves tasks to the queue.
type TaskEnqueuer interface {
	Enqueue(tasks ...backlite.Task) ([]string, error)
}

// QueueNotifier turns notifications into queued tasks. Enqueue failures are
// logged and the notification is dropped.
type QueueNotifier struct {
	queue TaskEnqueuer
}

func NewQueueNotifier(queue TaskEnqueuer) *QueueNotifier {
	return &QueueNotifier{queue: queue}
}

func (q *QueueNotifier) Notify(_ context.Context, n reservations.Notification) {
	task := SendNotificationTask{Kind: n.Kind, ReservationID: n.ReservationID, Status: n.Status}
	if _, err := q.queue.Enqueue(task); err != nil {
		log.Printf("[TASK ERROR] could not queue %s for reservation %d: %v", n.Kind, n.ReservationID, err)
	}
}

func (q *QueueNotifier) NotifyContact(_ context.Context, contactID uint) {
	if _, err := q.queue.Enqueue(SendContactAckTask{ContactID: contactID}); err != nil {
		log.Printf("[TASK ERROR] could not queue contact acknowledgement %d: %v", contactID, err)
	}
}
