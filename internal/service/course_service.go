package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/angleinstitute/backend/internal/repository"
)

// ErrCourseExists is returned when a course with the same slug already exists.
var ErrCourseExists = errors.New("course with this title already exists")

// CourseService manages the course catalog.
type CourseService interface {
	List(ctx context.Context) ([]*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	// Create derives the slug from the title and stores the course.
	Create(ctx context.Context, c *model.Course) error
	// Upsert stores c by slug, replacing an existing entry. Used by the seeder.
	Upsert(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	repo repository.CourseRepository
	now  func() time.Time
}

// NewCourseService creates a CourseService backed by repo.
func NewCourseService(repo repository.CourseRepository) CourseService {
	return &courseService{repo: repo, now: time.Now}
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, collapses every run of non-alphanumerics to a
// single hyphen and trims leading/trailing hyphens.
func Slugify(title string) string {
	s := slugSeparators.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

func (s *courseService) List(ctx context.Context) ([]*model.Course, error) {
	return s.repo.List(ctx)
}

func (s *courseService) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	return s.repo.FindBySlug(ctx, strings.ToLower(slug))
}

func (s *courseService) Create(ctx context.Context, c *model.Course) error {
	c.Slug = Slugify(c.Title)
	if c.Slug == "" {
		return fmt.Errorf("create course: empty slug for title %q", c.Title)
	}
	if _, err := s.repo.FindBySlug(ctx, c.Slug); err == nil {
		return ErrCourseExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check slug: %w", err)
	}

	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Price < 0 {
		c.Price = 0
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrCourseExists
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

func (s *courseService) Upsert(ctx context.Context, c *model.Course) error {
	if c.Slug == "" {
		c.Slug = Slugify(c.Title)
	} else {
		c.Slug = Slugify(c.Slug)
	}
	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.repo.Upsert(ctx, c)
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
