package notify

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/readingcenter/internal/config"
)

// Message is a rendered plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the mailer selected by configuration.
func NewMailer(cfg config.Notifications) Mailer {
	if cfg.Mailer == config.MailerSMTP {
		return NewSMTPMailer(cfg)
	}
	return &LogMailer{From: cfg.FromAddress}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("[NOTIFY] mail from=%s to=%s subject=%q\n%s", m.From, strings.Join(msg.To, ","), msg.Subject, msg.Body)
	return nil
}

// SMTPMailer sends through an SMTP relay with PLAIN auth when credentials are
// configured.
type SMTPMailer struct {
	addr    string
	host    string
	from    string
	auth    smtp.Auth
	timeout time.Duration
}

func NewSMTPMailer(cfg config.Notifications) *SMTPMailer {
	m := &SMTPMailer{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:    cfg.SMTPHost,
		from:    cfg.FromAddress,
		timeout: 30 * time.Second,
	}
	if cfg.SMTPUsername != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message %q has no recipients", msg.Subject)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(m.addr, m.auth, m.from, msg.To, m.encode(msg))
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", strings.Join(msg.To, ","), err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("smtp send to %s: timed out after %s", strings.Join(msg.To, ","), m.timeout)
	}
}

func (m *SMTPMailer) encode(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
