package service

import (
	"context"
	"time"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
)

// mockSubmissionRepository は SubmissionRepository のモック
type mockSubmissionRepository struct {
	createFunc         func(ctx context.Context, sub *model.Submission) error
	listFunc           func(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error)
	markSentFunc       func(ctx context.Context, id string, sentAt time.Time) error
	incrementRetryFunc func(ctx context.Context, id string) (int, error)
	setEmailErrorFunc  func(ctx context.Context, id, reason string) error
	deleteFunc         func(ctx context.Context, id string) error
}

func (m *mockSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, sub)
	}
	return nil
}

func (m *mockSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	return nil, repository.ErrNotFound
}

func (m *mockSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockSubmissionRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, sentAt)
	}
	return nil
}

func (m *mockSubmissionRepository) IncrementRetry(ctx context.Context, id string) (int, error) {
	if m.incrementRetryFunc != nil {
		return m.incrementRetryFunc(ctx, id)
	}
	return 1, nil
}

func (m *mockSubmissionRepository) SetEmailError(ctx context.Context, id, reason string) error {
	if m.setEmailErrorFunc != nil {
		return m.setEmailErrorFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockSubmissionRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockUserRepository は UserRepository のモック
type mockUserRepository struct {
	findByUsernameFunc func(ctx context.Context, username string) (*model.User, error)
	createFunc         func(ctx context.Context, u *model.User) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, u *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, u)
	}
	return nil
}

// stubIssuer returns "token-<userID>".
type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + userID, nil
}
