package repository

import (
	"context"
	"strings"
	"time"

	"github.com/angleinstitute/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

const submissionSelectCols = `id, type, name, email, phone,
	COALESCE(message, ''), COALESCE(subject, ''), COALESCE(address, ''), COALESCE(location, ''),
	email_sent, COALESCE(email_error, ''), retry_count, created_at, sent_at`

func scanSubmission(scan func(...any) error) (*model.Submission, error) {
	var s model.Submission
	var typ string
	if err := scan(&s.ID, &typ, &s.Name, &s.Email, &s.Phone,
		&s.Message, &s.Subject, &s.Address, &s.Location,
		&s.EmailSent, &s.EmailError, &s.RetryCount, &s.CreatedAt, &s.SentAt); err != nil {
		return nil, err
	}
	s.Type = model.SubmissionType(typ)
	return &s, nil
}

// Create inserts a submissions row. Empty optional fields are stored as NULL.
func (r *PgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO submissions (id, type, name, email, phone, message, subject, address, location,
		                          email_sent, retry_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12)`,
		sub.ID, string(sub.Type), sub.Name, sub.Email, sub.Phone,
		sub.Message, sub.Subject, sub.Address, sub.Location,
		sub.EmailSent, sub.RetryCount, sub.CreatedAt,
	)
	return pgErr(err)
}

func (r *PgSubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+submissionSelectCols+` FROM submissions WHERE id = $1`, id)
	s, err := scanSubmission(row.Scan)
	if err != nil {
		return nil, pgErr(err)
	}
	return s, nil
}

// List returns submissions filtered by type and, with FailedOnly, restricted
// to unsent rows that carry an email_error.
func (r *PgSubmissionRepository) List(ctx context.Context, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	var conditions []string
	var args []any

	if opts.Type != "" {
		args = append(args, string(opts.Type))
		conditions = append(conditions, "type = $1")
	}
	if opts.FailedOnly {
		conditions = append(conditions, "email_sent = FALSE", "email_error IS NOT NULL")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionSelectCols+` FROM submissions `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *PgSubmissionRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE submissions SET email_sent = TRUE, sent_at = $2 WHERE id = $1`, id, sentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgSubmissionRepository) IncrementRetry(ctx context.Context, id string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE submissions SET retry_count = retry_count + 1 WHERE id = $1 RETURNING retry_count`,
		id).Scan(&count)
	if err != nil {
		return 0, pgErr(err)
	}
	return count, nil
}

func (r *PgSubmissionRepository) SetEmailError(ctx context.Context, id, reason string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE submissions SET email_error = $2 WHERE id = $1`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgSubmissionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
