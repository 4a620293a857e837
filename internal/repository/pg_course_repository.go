package repository

import (
	"context"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgCourseRepository is the PostgreSQL implementation of CourseRepository.
type PgCourseRepository struct {
	pool *pgxpool.Pool
}

// NewPgCourseRepository creates a PgCourseRepository backed by the given pool.
func NewPgCourseRepository(pool *pgxpool.Pool) *PgCourseRepository {
	return &PgCourseRepository{pool: pool}
}

var _ CourseRepository = (*PgCourseRepository)(nil)

const courseSelectCols = `id, slug, title, description, image, duration, level, price, created_at, updated_at`

func scanCourse(scan func(...any) error) (*model.Course, error) {
	var c model.Course
	if err := scan(&c.ID, &c.Slug, &c.Title, &c.Description, &c.Image, &c.Duration,
		&c.Level, &c.Price, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgCourseRepository) List(ctx context.Context) ([]*model.Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+courseSelectCols+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows.Scan)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *PgCourseRepository) FindBySlug(ctx context.Context, slug string) (*model.Course, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+courseSelectCols+` FROM courses WHERE slug = $1`, slug)
	c, err := scanCourse(row.Scan)
	if err != nil {
		return nil, pgErr(err)
	}
	return c, nil
}

func (r *PgCourseRepository) Create(ctx context.Context, c *model.Course) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO courses (id, slug, title, description, image, duration, level, price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Slug, c.Title, c.Description, c.Image, c.Duration, c.Level, c.Price, c.CreatedAt, c.UpdatedAt)
	return pgErr(err)
}

// Upsert keeps the existing id and created_at when the slug already exists
// and writes them back into c.
func (r *PgCourseRepository) Upsert(ctx context.Context, c *model.Course) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO courses (id, slug, title, description, image, duration, level, price, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (slug) DO UPDATE SET
		   title = EXCLUDED.title, description = EXCLUDED.description, image = EXCLUDED.image,
		   duration = EXCLUDED.duration, level = EXCLUDED.level, price = EXCLUDED.price,
		   updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at`,
		c.ID, c.Slug, c.Title, c.Description, c.Image, c.Duration, c.Level, c.Price, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *PgCourseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
