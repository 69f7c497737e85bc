package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	gomail "gopkg.in/gomail.v2"
)

// SendmailTransport hands messages to the local MTA
type SendmailTransport struct {
	path string
	run  func(ctx context.Context, path string, args []string, raw []byte) error
}

// NewSendmailTransport pipes messages to the sendmail binary at path
func NewSendmailTransport(path string) *SendmailTransport {
	return &SendmailTransport{path: path, run: runSendmail}
}

func (t *SendmailTransport) Name() string { return "sendmail" }

func (t *SendmailTransport) Send(ctx context.Context, msg Message) error {
	sender := gomail.SendFunc(func(from string, to []string, m io.WriterTo) error {
		var buf bytes.Buffer
		if _, err := m.WriteTo(&buf); err != nil {
			return fmt.Errorf("failed to render message: %w", err)
		}
		return t.run(ctx, t.path, []string{"-t", "-i", "-f", from}, buf.Bytes())
	})

	if err := gomail.Send(sender, buildMessage(msg)); err != nil {
		return fmt.Errorf("sendmail: %w", err)
	}
	return nil
}

func runSendmail(ctx context.Context, path string, args []string, raw []byte) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(raw)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", path, err, msg)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
