// Package mailout sends command confirmation mail over SMTP.
package mailout

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Config holds SMTP delivery settings for confirmation mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Subject  string
}

const defaultSubject = "Please confirm your request"

// Mailer delivers confirmation messages through one SMTP endpoint.
type Mailer struct {
	client  *mail.Client
	from    string
	subject string
}

// New builds a mailer from SMTP settings.
func New(cfg Config) (*Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	options := []mail.Option{}
	if cfg.Port > 0 {
		options = append(options, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, options...)
	if err != nil {
		return nil, fmt.Errorf("build smtp client: %w", err)
	}
	subject := strings.TrimSpace(cfg.Subject)
	if subject == "" {
		subject = defaultSubject
	}
	return &Mailer{client: client, from: cfg.From, subject: subject}, nil
}

// SendConfirmation mails the confirm and rollback links to one recipient.
func (m *Mailer) SendConfirmation(ctx context.Context, to string, confirmURL string, rollbackURL string) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("mailer is not configured")
	}
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(m.subject)
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Confirm this request:\n\n  %s\n\nOr cancel it:\n\n  %s\n\nIf you did not make this request you can ignore this message; it expires on its own.\n",
		confirmURL, rollbackURL))
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}
	return nil
}
