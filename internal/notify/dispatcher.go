package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/angleinstitute/backend/internal/metrics"
	"github.com/angleinstitute/backend/internal/model"
)

// FailureReason is recorded on a submission whose notification exhausted its retries.
const FailureReason = "Email send failed after retries"

// Tracker records notification progress on a submission.
type Tracker interface {
	IncrementRetry(ctx context.Context, id string) (int, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

// Recipients routes notifications by submission type.
type Recipients struct {
	Admin     string
	Franchise string
}

// For returns the recipient for typ. Contact and enquiry go to Admin.
func (r Recipients) For(typ model.SubmissionType) string {
	if typ == model.SubmissionFranchise {
		return r.Franchise
	}
	return r.Admin
}

// Job is a single in-flight notification.
type Job struct {
	done chan struct{}
	err  error
}

// Done is closed when the job has finished, successfully or not.
func (j *Job) Done() <-chan struct{} { return j.done }

// Err returns the final send error. Valid only after Done is closed.
func (j *Job) Err() error { return j.err }

// Dispatcher runs notification jobs on background goroutines.
type Dispatcher struct {
	notifier   *Notifier
	tracker    Tracker
	recipients Recipients
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(n *Notifier, t Tracker, r Recipients) *Dispatcher {
	return &Dispatcher{
		notifier:   n,
		tracker:    t,
		recipients: r,
		logger:     slog.Default().With("component", "dispatcher"),
	}
}

// Dispatch starts sending the notification for sub and returns immediately.
// The job is not tied to any request context.
func (d *Dispatcher) Dispatch(sub model.Submission) *Job {
	job := &Job{done: make(chan struct{})}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(job.done)
		job.err = d.run(context.Background(), &sub)
	}()
	return job
}

func (d *Dispatcher) run(ctx context.Context, sub *model.Submission) error {
	msg, err := Format(sub)
	if err != nil {
		d.logger.Error("format notification", "submission_id", sub.ID, "error", err)
		return err
	}
	msg.To = d.recipients.For(sub.Type)

	sendErr := d.notifier.SendWithRetry(ctx, msg, func(attempt int, _ error) {
		if _, err := d.tracker.IncrementRetry(ctx, sub.ID); err != nil {
			d.logger.Error("increment retry", "submission_id", sub.ID, "attempt", attempt, "error", err)
		}
	})

	if sendErr != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.logger.Error("notification failed", "submission_id", sub.ID, "type", sub.Type, "error", sendErr)
		if err := d.tracker.MarkFailed(ctx, sub.ID, FailureReason); err != nil {
			d.logger.Error("mark failed", "submission_id", sub.ID, "error", err)
		}
		return sendErr
	}

	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	if err := d.tracker.MarkSent(ctx, sub.ID); err != nil {
		d.logger.Error("mark sent", "submission_id", sub.ID, "error", err)
	}
	return nil
}

// Wait blocks until every dispatched job has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
