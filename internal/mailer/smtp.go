package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

// SMTPSender relays messages through an SMTP server.
type SMTPSender struct {
	client *mail.Client
	from   From
	log    *logger.Logger
}

// NewSMTPSender creates an SMTP sender. Authentication is PLAIN when a
// username is configured.
func NewSMTPSender(cfg config.SMTPConfig, from From) (*SMTPSender, error) {
	if cfg.Host == "" || from.Email == "" {
		return nil, fmt.Errorf("smtp: %w", ErrNotConfigured)
	}
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return &SMTPSender{client: client, from: from, log: logger.Named("mailer.smtp")}, nil
}

// Send builds the MIME message and delivers it on a fresh connection.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Debug("sent", "recipient", msg.To)
	return nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.from.Name, s.from.Email); err != nil {
		return nil, fmt.Errorf("failed to set from: %w", err)
	}
	if err := m.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, fmt.Errorf("failed to set to: %w", err)
	}
	m.Subject(msg.Subject)
	for name, value := range msg.Headers {
		m.SetGenHeader(mail.Header(name), value)
	}
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	if msg.Text != "" {
		m.AddAlternativeString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
