// Package notify delivers finished or failed reports out of band.
package notify

import (
	"context"
	"fmt"
	"os"

	"github.com/wneessen/go-mail"

	"github.com/brandbrief/brandbrief/internal/config"
)

// Notifier delivers one notification. Delivery failures never roll back a
// report that was already persisted.
type Notifier interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPNotifier sends plain-text email over SMTP with STARTTLS.
type SMTPNotifier struct {
	cfg      config.Email
	password string
}

// NewSMTPNotifier builds a notifier from config. The account password is
// read from the environment variable named by config.
func NewSMTPNotifier(cfg config.Email) (*SMTPNotifier, error) {
	if cfg.Sender == "" || cfg.Receiver == "" {
		return nil, fmt.Errorf("email sender and receiver must be configured")
	}
	password := os.Getenv(cfg.PasswordEnv)
	if password == "" {
		return nil, fmt.Errorf("email password not set (expected in $%s)", cfg.PasswordEnv)
	}
	return &SMTPNotifier{cfg: cfg, password: password}, nil
}

// Send delivers one message. Single attempt, no retry.
func (n *SMTPNotifier) Send(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Sender); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(n.cfg.Receiver); err != nil {
		return fmt.Errorf("setting receiver: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(n.cfg.SMTPHost,
		mail.WithPort(n.cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Sender),
		mail.WithPassword(n.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	return nil
}
