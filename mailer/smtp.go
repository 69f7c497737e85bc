package mailer

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// SMTPTransport submits messages to an authenticated SMTP relay
type SMTPTransport struct {
	dialer *gomail.Dialer
}

// NewSMTPTransport dials host:port, using implicit TLS when secure is set
// and STARTTLS otherwise
func NewSMTPTransport(host string, port int, user, pass string, secure bool) *SMTPTransport {
	d := gomail.NewDialer(host, port, user, pass)
	d.SSL = secure
	return &SMTPTransport{dialer: d}
}

func (t *SMTPTransport) Name() string { return "smtp" }

// Send gives up when ctx ends; the dial itself cannot be interrupted, so the
// goroutine finishes on its own.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	done := make(chan error, 1)
	go func() {
		done <- t.dialer.DialAndSend(buildMessage(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp %s:%d: %w", t.dialer.Host, t.dialer.Port, ctx.Err())
	}
}
