// Package mail wraps the outbound SMTP transport behind a narrow interface so
// the notification dispatcher can be tested without a mail server.
package mail

import (
	"context"
	"errors"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"gagetrack/internal/config"
)

// ErrAuth marks SMTP authentication failures; all other transport errors are
// returned as-is.
var ErrAuth = errors.New("smtp authentication failed")

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTP(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, from, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.cfg.Server,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		var se *gomail.SendError
		if errors.As(err, &se) && se.Reason == gomail.ErrSMTPAuthFailed {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return err
	}
	return nil
}
