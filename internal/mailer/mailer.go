// Package mailer delivers single transactional messages through SES, an SMTP
// relay, or the log (development). Newsletter fan-out lives in the
// newsletter service; a Sender only ever sees one recipient.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// ErrNotConfigured is returned when a provider is selected without credentials.
var ErrNotConfigured = errors.New("mailer not configured")

// Message is one outbound email.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
	// Headers are extra RFC 5322 headers, e.g. List-Unsubscribe.
	Headers map[string]string
	// Tags label the message for provider-side analytics.
	Tags map[string]string
}

// From is the sender identity shared by every provider.
type From struct {
	Email string
	Name  string
}

func (f From) String() string {
	if f.Name == "" {
		return f.Email
	}
	return fmt.Sprintf("%s <%s>", f.Name, f.Email)
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the Sender selected by cfg.Mailer.Provider.
func New(ctx context.Context, cfg *config.Config) (Sender, error) {
	from := From{Email: cfg.Mailer.FromEmail, Name: cfg.Mailer.FromName}
	switch strings.ToLower(cfg.Mailer.Provider) {
	case "ses":
		return NewSESSender(ctx, cfg.SES, from)
	case "smtp":
		return NewSMTPSender(cfg.SMTP, from)
	case "log", "":
		return NewLogSender(from), nil
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Mailer.Provider)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	from From
	log  *logger.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(from From) *LogSender {
	return &LogSender{from: from, log: logger.Named("mailer")}
}

// Send logs the message envelope.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient required")
	}
	s.log.Info("mail not delivered (log provider)",
		"from", s.from.Email, "recipient", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}
