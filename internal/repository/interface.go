package repository

import (
	"context"
	"time"

	"github.com/angleinstitute/backend/internal/model"
)

// DB is the liveness check used by the health endpoint.
type DB interface {
	Ping(ctx context.Context) error
}

// SubmissionRepository persists form submissions and their notification outcome.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	FindByID(ctx context.Context, id string) (*model.Submission, error)
	// List returns submissions newest first.
	List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	// IncrementRetry adds one to retry_count and returns the new value.
	IncrementRetry(ctx context.Context, id string) (int, error)
	SetEmailError(ctx context.Context, id, reason string) error
	Delete(ctx context.Context, id string) error
}

// CourseRepository persists the course catalog.
type CourseRepository interface {
	// List returns courses newest first.
	List(ctx context.Context) ([]*model.Course, error)
	FindBySlug(ctx context.Context, slug string) (*model.Course, error)
	// Create returns ErrDuplicate when the slug is taken.
	Create(ctx context.Context, c *model.Course) error
	// Upsert inserts or replaces the course with the same slug.
	Upsert(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists admin accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Create returns ErrDuplicate when the username is taken.
	Create(ctx context.Context, u *model.User) error
}
