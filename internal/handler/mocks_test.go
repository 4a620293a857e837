package handler

import (
	"context"
	"io"
	"sync"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/notify"
	"github.com/angleinstitute/backend/internal/service"
)

// ---------------------------------------------------------------------------
// Mock SubmissionService
// ---------------------------------------------------------------------------

type mockSubmissionService struct {
	submitFunc     func(ctx context.Context, sub *model.Submission) error
	statusFunc     func(ctx context.Context, id string) (model.Session, error)
	deleteFunc     func(ctx context.Context, id string) error
	listFunc       func(ctx context.Context, typ model.SubmissionType) ([]*model.Submission, error)
	listFailedFunc func(ctx context.Context) ([]*model.Submission, error)
}

func (m *mockSubmissionService) Submit(ctx context.Context, sub *model.Submission) error {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, sub)
	}
	sub.ID = "generated-id"
	return nil
}

func (m *mockSubmissionService) Status(ctx context.Context, id string) (model.Session, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx, id)
	}
	return model.Session{ID: id}, nil
}

func (m *mockSubmissionService) MarkSent(ctx context.Context, id string) error { return nil }

func (m *mockSubmissionService) IncrementRetry(ctx context.Context, id string) (int, error) {
	return 0, nil
}

func (m *mockSubmissionService) MarkFailed(ctx context.Context, id, reason string) error { return nil }

func (m *mockSubmissionService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockSubmissionService) List(ctx context.Context, typ model.SubmissionType) ([]*model.Submission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, typ)
	}
	return nil, nil
}

func (m *mockSubmissionService) ListFailed(ctx context.Context) ([]*model.Submission, error) {
	if m.listFailedFunc != nil {
		return m.listFailedFunc(ctx)
	}
	return nil, nil
}

var _ service.SubmissionService = (*mockSubmissionService)(nil)

// ---------------------------------------------------------------------------
// Mock Dispatcher
// ---------------------------------------------------------------------------

type mockDispatcher struct {
	mu         sync.Mutex
	dispatched []model.Submission
}

func (m *mockDispatcher) Dispatch(sub model.Submission) *notify.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, sub)
	return nil
}

func (m *mockDispatcher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dispatched)
}

// ---------------------------------------------------------------------------
// Mock CourseService
// ---------------------------------------------------------------------------

type mockCourseService struct {
	listFunc      func(ctx context.Context) ([]*model.Course, error)
	getBySlugFunc func(ctx context.Context, slug string) (*model.Course, error)
	createFunc    func(ctx context.Context, c *model.Course) error
	upsertFunc    func(ctx context.Context, c *model.Course) error
	deleteFunc    func(ctx context.Context, id string) error
}

func (m *mockCourseService) List(ctx context.Context) ([]*model.Course, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockCourseService) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	if m.getBySlugFunc != nil {
		return m.getBySlugFunc(ctx, slug)
	}
	return &model.Course{Slug: slug}, nil
}

func (m *mockCourseService) Create(ctx context.Context, c *model.Course) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return nil
}

func (m *mockCourseService) Upsert(ctx context.Context, c *model.Course) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, c)
	}
	return nil
}

func (m *mockCourseService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	signupFunc func(ctx context.Context, in service.SignupInput) (*model.User, string, error)
	loginFunc  func(ctx context.Context, username, password string) (*model.User, string, error)
}

func (m *mockAuthService) Signup(ctx context.Context, in service.SignupInput) (*model.User, string, error) {
	if m.signupFunc != nil {
		return m.signupFunc(ctx, in)
	}
	return &model.User{ID: "u1", Username: in.Username}, "token", nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return &model.User{ID: "u1", Username: username}, "token", nil
}

// ---------------------------------------------------------------------------
// Mock Storage
// ---------------------------------------------------------------------------

type mockStorage struct {
	saveFunc func(ctx context.Context, key string, data io.Reader, contentType string) (string, error)
}

func (m *mockStorage) Save(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, key, data, contentType)
	}
	return "/uploads/" + key, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error { return nil }
