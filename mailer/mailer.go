// Package mailer delivers plain-text notification emails through the
// configured transport.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/vukatravels/site/config"
)

// Message is a plain-text notification
type Message struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	Body    string
}

// Transport sends a Message. Implementations must honor ctx cancellation.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// New selects the transport named by cfg.Transport
func New(ctx context.Context, cfg config.MailConfig, logger *zap.Logger) (Transport, error) {
	switch cfg.Transport {
	case config.TransportSendmail, "":
		return NewSendmailTransport(cfg.SendmailPath), nil
	case config.TransportSMTP:
		return NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPSecure), nil
	case config.TransportSES:
		return NewSESTransport(ctx, cfg.AWSRegion, cfg.AWSAccessKey, cfg.AWSSecretKey, logger)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)
	return m
}
