package service

import (
	"context"

	"github.com/angleinstitute/backend/internal/model"
)

// DefaultFailureReason is recorded when MarkFailed is called without a reason.
const DefaultFailureReason = "Failed after max retries"

// SubmissionService stores form submissions and tracks their notification state,
// durably in the repository and transiently in the session cache.
type SubmissionService interface {
	// Submit assigns an ID and timestamps, persists the submission and caches
	// its session. The durable write completes before Submit returns.
	Submit(ctx context.Context, sub *model.Submission) error

	// Status returns the cached session. Expired or unknown IDs yield
	// repository.ErrNotFound.
	Status(ctx context.Context, id string) (model.Session, error)

	MarkSent(ctx context.Context, id string) error
	IncrementRetry(ctx context.Context, id string) (int, error)
	MarkFailed(ctx context.Context, id, reason string) error

	// Delete removes the durable record and any cached session.
	Delete(ctx context.Context, id string) error

	// List returns submissions newest first; an empty type returns all.
	List(ctx context.Context, typ model.SubmissionType) ([]*model.Submission, error)

	// ListFailed returns unsent submissions that carry an email error.
	ListFailed(ctx context.Context) ([]*model.Submission, error)
}
