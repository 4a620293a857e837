package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angleinstitute/backend/internal/model"
)

// IsMemoryURL reports whether dbURL selects the non-persistent in-process backend.
func IsMemoryURL(dbURL string) bool {
	return strings.HasPrefix(dbURL, "memory://")
}

// NewMemoryStores returns Stores backed by process memory. Data is lost on
// exit; intended for local development and tests.
func NewMemoryStores() *Stores {
	return &Stores{
		Backend:     "memory",
		DB:          memoryPinger{},
		Submissions: NewMemorySubmissionRepository(),
		Courses:     NewMemoryCourseRepository(),
		Users:       NewMemoryUserRepository(),
	}
}

type memoryPinger struct{}

func (memoryPinger) Ping(ctx context.Context) error { return ctx.Err() }

// MemorySubmissionRepository is an in-memory SubmissionRepository.
type MemorySubmissionRepository struct {
	mu    sync.RWMutex
	items map[string]model.Submission
}

func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{items: make(map[string]model.Submission)}
}

var _ SubmissionRepository = (*MemorySubmissionRepository)(nil)

func (r *MemorySubmissionRepository) Create(_ context.Context, sub *model.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[sub.ID]; ok {
		return ErrDuplicate
	}
	r.items[sub.ID] = *sub
	return nil
}

func (r *MemorySubmissionRepository) FindByID(_ context.Context, id string) (*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySubmissionRepository) List(_ context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*model.Submission
	for _, s := range r.items {
		if opts.Type != "" && s.Type != opts.Type {
			continue
		}
		if opts.FailedOnly && (s.EmailSent || s.EmailError == "") {
			continue
		}
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemorySubmissionRepository) modify(id string, fn func(*model.Submission)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	fn(&s)
	r.items[id] = s
	return nil
}

func (r *MemorySubmissionRepository) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	return r.modify(id, func(s *model.Submission) {
		s.EmailSent = true
		s.SentAt = &sentAt
	})
}

func (r *MemorySubmissionRepository) IncrementRetry(_ context.Context, id string) (int, error) {
	var n int
	err := r.modify(id, func(s *model.Submission) {
		s.RetryCount++
		n = s.RetryCount
	})
	return n, err
}

func (r *MemorySubmissionRepository) SetEmailError(_ context.Context, id, reason string) error {
	return r.modify(id, func(s *model.Submission) { s.EmailError = reason })
}

func (r *MemorySubmissionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// MemoryCourseRepository is an in-memory CourseRepository keyed by ID.
type MemoryCourseRepository struct {
	mu    sync.RWMutex
	items map[string]model.Course
}

func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{items: make(map[string]model.Course)}
}

var _ CourseRepository = (*MemoryCourseRepository)(nil)

func (r *MemoryCourseRepository) List(_ context.Context) ([]*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Course, 0, len(r.items))
	for _, c := range r.items {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryCourseRepository) bySlug(slug string) (model.Course, bool) {
	for _, c := range r.items {
		if c.Slug == slug {
			return c, true
		}
	}
	return model.Course{}, false
}

func (r *MemoryCourseRepository) FindBySlug(_ context.Context, slug string) (*model.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.bySlug(slug)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCourseRepository) Create(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySlug(c.Slug); ok {
		return ErrDuplicate
	}
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryCourseRepository) Upsert(_ context.Context, c *model.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.bySlug(c.Slug); ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryCourseRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// MemoryUserRepository is an in-memory UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	items map[string]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{items: make(map[string]model.User)}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	r.items[u.ID] = *u
	return nil
}
