package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/angleinstitute/backend/internal/metrics"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultBaseDelay scales the backoff: retry k waits 2^(k+1) * BaseDelay.
	DefaultBaseDelay = time.Second
)

// Notifier sends messages with bounded exponential backoff.
type Notifier struct {
	Mailer     Mailer
	MaxRetries int
	BaseDelay  time.Duration

	logger *slog.Logger
}

// NewNotifier creates a Notifier with the default retry schedule (2s, 4s).
func NewNotifier(m Mailer) *Notifier {
	return &Notifier{
		Mailer:     m,
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		logger:     slog.Default().With("component", "notifier"),
	}
}

// backoff returns the delay before retry k (0-based).
func (n *Notifier) backoff(k int) time.Duration {
	return n.BaseDelay << (k + 1)
}

// SendWithRetry attempts delivery up to MaxRetries+1 times. onFailure, when
// non-nil, runs after every failed attempt with the 1-based attempt number.
// The returned error wraps the last send error.
func (n *Notifier) SendWithRetry(ctx context.Context, msg Message, onFailure func(attempt int, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= n.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff(attempt - 1)
			n.logger.Info("retrying email", "to", msg.To, "delay", delay, "attempt", attempt+1, "max_attempts", n.MaxRetries+1)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("send aborted after %d attempts: %w", attempt, ctx.Err())
			case <-t.C:
			}
		}

		err := n.Mailer.Send(ctx, msg)
		if err == nil {
			metrics.NotificationAttempts.WithLabelValues("ok").Inc()
			n.logger.Info("email sent", "to", msg.To, "attempt", attempt+1)
			return nil
		}
		metrics.NotificationAttempts.WithLabelValues("error").Inc()
		n.logger.Warn("email attempt failed", "to", msg.To, "attempt", attempt+1, "error", err)
		lastErr = err
		if onFailure != nil {
			onFailure(attempt+1, err)
		}
	}
	return fmt.Errorf("email sending failed after %d attempts: %w", n.MaxRetries+1, lastErr)
}
