package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
	"github.com/folio-dev/folio/internal/domain"
	domainproject "github.com/folio-dev/folio/internal/domain/project"
	portproject "github.com/folio-dev/folio/internal/port/project"
)

var _ portproject.Repository = (*Repository)(nil)

const projectColumns = `id, name, description, project_url, image_filename, date_added, version`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) List(ctx context.Context) ([]domainproject.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY date_added DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out, err := pgx.CollectRows(rows, collectProject)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if out == nil {
		out = []domainproject.Project{}
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domainproject.Project, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("get project %d: %w", id, pgdb.MapError(err))
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	var out domainproject.Project
	err := pgdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`INSERT INTO projects (name, description, project_url, image_filename, date_added, version)
			 VALUES ($1, $2, $3, $4, $5, 1)
			 RETURNING `+projectColumns,
			p.Name, p.Description, p.ProjectURL, p.ImageFilename, p.DateAdded,
		)
		var err error
		out, err = scanProject(row)
		return err
	})
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("insert project: %w", pgdb.MapError(err))
	}
	return out, nil
}

// Update compares p.Version against storage. A mismatch means another writer
// committed first and is reported as domain.ErrConflict.
func (r *Repository) Update(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	var out domainproject.Project
	err := pgdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE projects
			 SET name = $2, description = $3, project_url = $4, image_filename = $5, version = version + 1
			 WHERE id = $1 AND version = $6
			 RETURNING `+projectColumns,
			p.ID, p.Name, p.Description, p.ProjectURL, p.ImageFilename, p.Version,
		)
		var err error
		out, err = scanProject(row)
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: project %d was modified concurrently", domain.ErrConflict, p.ID)
	})
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("update project %d: %w", p.ID, pgdb.MapError(err))
	}
	return out, nil
}

// Delete removes the row and returns it as it was at deletion, so callers
// reclaim exactly the image the deleted row referenced.
func (r *Repository) Delete(ctx context.Context, id int64) (domainproject.Project, error) {
	var out domainproject.Project
	err := pgdb.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		out, err = scanProject(tx.QueryRow(ctx, `DELETE FROM projects WHERE id = $1 RETURNING `+projectColumns, id))
		return err
	})
	if err != nil {
		return domainproject.Project{}, fmt.Errorf("delete project %d: %w", id, pgdb.MapError(err))
	}
	return out, nil
}

func (r *Repository) ImageFilenames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT image_filename FROM projects WHERE image_filename IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list image filenames: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list image filenames: %w", err)
	}
	return names, nil
}

func collectProject(row pgx.CollectableRow) (domainproject.Project, error) {
	return scanProject(row)
}

func scanProject(row pgx.Row) (domainproject.Project, error) {
	var p domainproject.Project
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.ProjectURL, &p.ImageFilename, &p.DateAdded, &p.Version)
	return p, err
}
