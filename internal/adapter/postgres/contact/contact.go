package contact

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
	"github.com/folio-dev/folio/internal/domain"
	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
	portcontact "github.com/folio-dev/folio/internal/port/contact"
)

var _ portcontact.Repository = (*Repository)(nil)

const submissionColumns = `id, name, email, phone, message, submission_date`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, s domaincontact.Submission) (domaincontact.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO contact_submissions (name, email, phone, message, submission_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+submissionColumns,
		s.Name, s.Email, s.Phone, s.Message, s.SubmissionDate,
	)
	out, err := scanSubmission(row)
	if err != nil {
		return domaincontact.Submission{}, fmt.Errorf("insert contact submission: %w", pgdb.MapError(err))
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domaincontact.Submission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+submissionColumns+` FROM contact_submissions WHERE id = $1`, id)
	out, err := scanSubmission(row)
	if err != nil {
		return domaincontact.Submission{}, fmt.Errorf("get contact submission %d: %w", id, pgdb.MapError(err))
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]domaincontact.Submission, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contact submissions: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM contact_submissions
		 ORDER BY submission_date DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact submissions: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domaincontact.Submission, error) {
		return scanSubmission(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list contact submissions: %w", err)
	}
	return out, total, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact submission %d: %w", id, pgdb.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete contact submission %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanSubmission(row pgx.Row) (domaincontact.Submission, error) {
	var s domaincontact.Submission
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Message, &s.SubmissionDate)
	return s, err
}
