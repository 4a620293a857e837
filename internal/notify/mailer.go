// Package notify formats submission notifications and delivers them through a
// Mailer with bounded exponential-backoff retries.
package notify

import (
	"context"
	"log/slog"
)

// Message is a single outbound email with plain-text and HTML bodies.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a Message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleMailer logs messages instead of sending them. Used in development
// when no mail backend is configured.
type ConsoleMailer struct {
	logger *slog.Logger
}

// NewConsoleMailer creates a ConsoleMailer writing to the default logger.
func NewConsoleMailer() *ConsoleMailer {
	return &ConsoleMailer{logger: slog.Default().With("component", "console_mailer")}
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.InfoContext(ctx, "email (console)",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
