package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angleinstitute/backend/internal/metrics"
	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/sessionstore"
)

// sentLinger keeps a delivered session visible to status polling for a moment
// before it is dropped from the cache.
const sentLinger = 5 * time.Second

type submissionServiceImpl struct {
	repo   repository.SubmissionRepository
	cache  sessionstore.Cache
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// NewSubmissionService creates a SubmissionService over repo and cache.
func NewSubmissionService(repo repository.SubmissionRepository, cache sessionstore.Cache) SubmissionService {
	return &submissionServiceImpl{
		repo:   repo,
		cache:  cache,
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default().With("component", "submission_service"),
	}
}

func (s *submissionServiceImpl) Submit(ctx context.Context, sub *model.Submission) error {
	sub.ID = s.newID()
	sub.CreatedAt = s.now().UTC()
	sub.EmailSent = false
	sub.RetryCount = 0
	sub.EmailError = ""
	sub.SentAt = nil

	if err := s.repo.Create(ctx, sub); err != nil {
		return fmt.Errorf("save submission: %w", err)
	}

	s.cache.Set(model.Session{
		ID:        sub.ID,
		Type:      sub.Type,
		CreatedAt: sub.CreatedAt,
	})
	metrics.SubmissionsTotal.WithLabelValues(string(sub.Type)).Inc()
	s.logger.Info("submission stored", "submission_id", sub.ID, "type", sub.Type)
	return nil
}

func (s *submissionServiceImpl) Status(_ context.Context, id string) (model.Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return model.Session{}, fmt.Errorf("session %s: %w", id, repository.ErrNotFound)
	}
	return sess, nil
}

func (s *submissionServiceImpl) MarkSent(ctx context.Context, id string) error {
	s.cache.Update(id, func(sess *model.Session) { sess.EmailSent = true })
	s.cache.Expire(id, sentLinger)

	if err := s.repo.MarkSent(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

func (s *submissionServiceImpl) IncrementRetry(ctx context.Context, id string) (int, error) {
	n, err := s.repo.IncrementRetry(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("increment retry: %w", err)
	}
	s.cache.Update(id, func(sess *model.Session) { sess.RetryCount = n })
	return n, nil
}

// MarkFailed keeps the cached session (still reported as pending) and records
// the reason on the durable record.
func (s *submissionServiceImpl) MarkFailed(ctx context.Context, id, reason string) error {
	if reason == "" {
		reason = DefaultFailureReason
	}
	s.cache.Update(id, func(sess *model.Session) { sess.Failed = true })

	if err := s.repo.SetEmailError(ctx, id, reason); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

func (s *submissionServiceImpl) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	s.cache.Delete(id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

func (s *submissionServiceImpl) List(ctx context.Context, typ model.SubmissionType) ([]*model.Submission, error) {
	return s.repo.List(ctx, model.SubmissionListOptions{Type: typ})
}

func (s *submissionServiceImpl) ListFailed(ctx context.Context) ([]*model.Submission, error) {
	return s.repo.List(ctx, model.SubmissionListOptions{FailedOnly: true})
}
