// Package pop3 connects the mail ingestion domain to a POP3 mailbox.
package pop3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	pop3 "github.com/knadh/go-pop3"

	"github.com/louisbranch/signalpost/internal/platform/timeouts"
	"github.com/louisbranch/signalpost/internal/services/listener/domain"
)

// Config holds POP3 mailbox connection settings.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	TLSEnabled bool
}

// Transport opens POP3 sessions against one configured mailbox.
type Transport struct {
	cfg Config
}

// NewTransport builds a transport from mailbox settings.
func NewTransport(cfg Config) *Transport {
	return &Transport{cfg: cfg}
}

// Connect dials and authenticates one mailbox session.
func (t *Transport) Connect(ctx context.Context) (domain.Session, error) {
	if t == nil || strings.TrimSpace(t.cfg.Host) == "" {
		return nil, fmt.Errorf("mailbox host is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := pop3.New(pop3.Opt{
		Host:        t.cfg.Host,
		Port:        t.cfg.Port,
		TLSEnabled:  t.cfg.TLSEnabled,
		DialTimeout: timeouts.MailDial,
	})
	conn, err := client.NewConn()
	if err != nil {
		return nil, fmt.Errorf("dial pop3 server: %w", err)
	}
	if t.cfg.Username != "" {
		if err := conn.Auth(t.cfg.Username, t.cfg.Password); err != nil {
			_ = conn.Quit()
			return nil, fmt.Errorf("authenticate mailbox: %w", err)
		}
	}
	return &session{conn: conn}, nil
}

// session wraps one POP3 connection. Deletions are marked per message and
// commit on Quit, which matches the domain's all-or-nothing batch contract.
type session struct {
	conn  *pop3.Conn
	count int
}

func (s *session) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count, _, err := s.conn.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat mailbox: %w", err)
	}
	s.count = count
	return count, nil
}

func (s *session) Fetch(ctx context.Context, seq int) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	entity, err := s.conn.Retr(seq)
	if err != nil {
		return domain.Message{}, fmt.Errorf("retrieve message %d: %w", seq, err)
	}
	return decodeMessage(entity)
}

func (s *session) DeleteAll(ctx context.Context) error {
	for seq := 1; seq <= s.count; seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.conn.Dele(seq); err != nil {
			return fmt.Errorf("mark message %d deleted: %w", seq, err)
		}
	}
	return nil
}

func (s *session) Quit() error {
	return s.conn.Quit()
}

// decodeMessage reduces a parsed MIME entity to the subject plus one HTML
// and one plain-text body part. Multipart messages keep the first part of
// each type; single-part bodies map by their declared content type.
func decodeMessage(entity *message.Entity) (domain.Message, error) {
	header := gomail.Header{Header: entity.Header}
	subject, err := header.Subject()
	if err != nil {
		// Fall back to the raw header when encoded-word decoding fails.
		subject = entity.Header.Get("Subject")
	}
	decoded := domain.Message{Subject: strings.TrimSpace(subject)}

	if multipart := entity.MultipartReader(); multipart != nil {
		for {
			part, err := multipart.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return domain.Message{}, fmt.Errorf("read message part: %w", err)
			}
			assignPart(&decoded, part)
		}
		return decoded, nil
	}
	assignPart(&decoded, entity)
	return decoded, nil
}

func assignPart(decoded *domain.Message, part *message.Entity) {
	contentType, _, err := part.Header.ContentType()
	if err != nil {
		contentType = "text/plain"
	}
	body, err := io.ReadAll(part.Body)
	if err != nil {
		return
	}
	switch contentType {
	case "text/html":
		if decoded.HTMLBody == "" {
			decoded.HTMLBody = string(body)
		}
	case "text/plain":
		if decoded.TextBody == "" {
			decoded.TextBody = string(body)
		}
	}
}
