// Package notify renders and delivers the center's outgoing email.
//
// The Dispatcher turns reservation events into messages. AsyncNotifier runs
// deliveries on goroutines for deployments without the task queue; the queued
// variant lives in internal/tasks.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database/content"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/entities"
	"github.com/mrlokans/readingcenter/internal/reservations"
)

// Dispatcher renders and sends one notification at a time.
type Dispatcher struct {
	reservations *dbreservations.Repository
	settings     *settings.Repository
	content      *content.Repository
	mailer       Mailer

	adminEmail string
	centerName string
}

func NewDispatcher(db *gorm.DB, mailer Mailer, notifications config.Notifications, center config.Center) *Dispatcher {
	return &Dispatcher{
		reservations: dbreservations.NewRepository(db),
		settings:     settings.NewRepository(db),
		content:      content.NewRepository(db),
		mailer:       mailer,
		adminEmail:   notifications.AdminEmail,
		centerName:   center.Name,
	}
}

// Deliver sends the message for a reservation event. A successful visitor
// confirmation sets the reservation's notification_sent flag.
func (d *Dispatcher) Deliver(ctx context.Context, n reservations.Notification) error {
	res, err := d.reservations.Get(n.ReservationID)
	if err != nil {
		return fmt.Errorf("load reservation %d: %w", n.ReservationID, err)
	}

	data := messageData{
		CenterName:  d.center(),
		Reservation: res,
		Status:      n.Status,
	}
	if res.Book != nil {
		data.BookTitle = res.Book.Title
	}

	var msg Message
	switch n.Kind {
	case reservations.KindConfirmation:
		msg, err = render(tmplConfirmation, data, res.VisitorEmail)
	case reservations.KindAdminAlert:
		admin := d.adminRecipient()
		if admin == "" {
			log.Printf("[NOTIFY] no admin email configured, skipping alert for %s", res.ReservationNumber)
			return nil
		}
		msg, err = render(tmplAdminAlert, data, admin)
	case reservations.KindStatusUpdate:
		if data.Status == "" {
			data.Status = res.Status
		}
		msg, err = render(tmplStatusUpdate, data, res.VisitorEmail)
	case reservations.KindVisitReminder:
		msg, err = render(tmplReminder, data, res.VisitorEmail)
	default:
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	if err != nil {
		return err
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		return err
	}

	if n.Kind == reservations.KindConfirmation {
		if err := d.reservations.MarkNotificationSent(res.ID); err != nil {
			log.Printf("[NOTIFY] failed to flag reservation %d as notified: %v", res.ID, err)
		}
	}
	return nil
}

// DeliverContactAck thanks the sender of a contact message.
func (d *Dispatcher) DeliverContactAck(ctx context.Context, contactID uint) error {
	msg, err := d.content.GetContact(contactID)
	if err != nil {
		return fmt.Errorf("load contact message %d: %w", contactID, err)
	}
	out, err := render(tmplContactAck, messageData{CenterName: d.center(), Contact: msg}, msg.Email)
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, out)
}

// adminRecipient prefers the admin_notification_email parameter over the
// configured fallback.
func (d *Dispatcher) adminRecipient() string {
	value, ok, err := d.settings.Get(entities.ParamAdminNotificationEmail)
	if err != nil {
		log.Printf("[NOTIFY] failed to read %s: %v", entities.ParamAdminNotificationEmail, err)
	}
	if ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return d.adminEmail
}

func (d *Dispatcher) center() string {
	if value, ok, err := d.settings.Get(entities.ParamCenterName); err == nil && ok && value != "" {
		return value
	}
	return d.centerName
}
