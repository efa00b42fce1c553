package notify

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

// Template names
const (
	tmplConfirmation = "confirmation"
	tmplAdminAlert   = "admin_alert"
	tmplStatusUpdate = "status_update"
	tmplReminder     = "visit_reminder"
	tmplContactAck   = "contact_ack"
)

var funcs = template.FuncMap{
	"slot": slotLabel,
}

var templates = map[string]messageTemplate{
	tmplConfirmation: parse(tmplConfirmation,
		`{{.CenterName}}: reservation {{.Reservation.ReservationNumber}} received`,
		`Hello {{.Reservation.VisitorName}},

We received your request to consult "{{.BookTitle}}" on {{.Reservation.DesiredDate}} ({{slot .Reservation.Slot}}).
Your reservation number is {{.Reservation.ReservationNumber}}. We will let you know once it has been reviewed.

{{.CenterName}}
`),
	tmplAdminAlert: parse(tmplAdminAlert,
		`New reservation {{.Reservation.ReservationNumber}}`,
		`A new reservation is waiting for review.

Number:  {{.Reservation.ReservationNumber}}
Book:    {{.BookTitle}}
Date:    {{.Reservation.DesiredDate}} ({{slot .Reservation.Slot}})
Visitor: {{.Reservation.VisitorName}} <{{.Reservation.VisitorEmail}}>{{if .Reservation.VisitorPhone}}, {{.Reservation.VisitorPhone}}{{end}}
{{- if .Reservation.Comment}}
Comment: {{.Reservation.Comment}}
{{- end}}
`),
	tmplStatusUpdate: parse(tmplStatusUpdate,
		`{{.CenterName}}: reservation {{.Reservation.ReservationNumber}} {{.Status}}`,
		`Hello {{.Reservation.VisitorName}},

{{if eq .Status "validated" -}}
Your reservation to consult "{{.BookTitle}}" on {{.Reservation.DesiredDate}} ({{slot .Reservation.Slot}}) is confirmed.
{{- else -}}
We are sorry, your reservation to consult "{{.BookTitle}}" on {{.Reservation.DesiredDate}} could not be accepted.
{{- end}}
{{- if .Reservation.AdminNote}}

Note from the team: {{.Reservation.AdminNote}}
{{- end}}

Reservation number: {{.Reservation.ReservationNumber}}

{{.CenterName}}
`),
	tmplReminder: parse(tmplReminder,
		`{{.CenterName}}: your visit on {{.Reservation.DesiredDate}}`,
		`Hello {{.Reservation.VisitorName}},

This is a reminder of your visit on {{.Reservation.DesiredDate}} ({{slot .Reservation.Slot}}) to consult "{{.BookTitle}}".
Reservation number: {{.Reservation.ReservationNumber}}

{{.CenterName}}
`),
	tmplContactAck: parse(tmplContactAck,
		`{{.CenterName}}: we received your message`,
		`Hello {{.Contact.Name}},

Thank you for writing to us{{if .Contact.Subject}} about "{{.Contact.Subject}}"{{end}}. We will get back to you soon.

{{.CenterName}}
`),
}

func parse(name, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(name + "_subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New(name + "_body").Funcs(funcs).Parse(body)),
	}
}

type messageData struct {
	CenterName  string
	BookTitle   string
	Status      entities.ReservationStatus
	Reservation *entities.Reservation
	Contact     *entities.ContactMessage
}

// render executes the named template pair into a message for to.
func render(name string, data messageData, to ...string) (Message, error) {
	tmpl, ok := templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown template %q", name)
	}

	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", name, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", name, err)
	}
	return Message{To: to, Subject: subject.String(), Body: body.String()}, nil
}

func slotLabel(slot entities.Slot) string {
	switch slot {
	case entities.SlotMorning:
		return "morning"
	case entities.SlotAfternoon:
		return "afternoon"
	}
	return string(slot)
}
