package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/folio-dev/folio/internal/adapter/postgres"
	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
	portadmin "github.com/folio-dev/folio/internal/port/admin"
)

var _ portadmin.Repository = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, u domainadmin.User) (domainadmin.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO admin_users (username, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, password_hash, created_at`,
		u.Username, u.PasswordHash, u.CreatedAt,
	)
	var out domainadmin.User
	if err := row.Scan(&out.ID, &out.Username, &out.PasswordHash, &out.CreatedAt); err != nil {
		return domainadmin.User{}, fmt.Errorf("insert admin user: %w", pgdb.MapError(err))
	}
	return out, nil
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (domainadmin.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admin_users WHERE username = $1`, username,
	)
	var out domainadmin.User
	if err := row.Scan(&out.ID, &out.Username, &out.PasswordHash, &out.CreatedAt); err != nil {
		return domainadmin.User{}, fmt.Errorf("get admin user: %w", pgdb.MapError(err))
	}
	return out, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admin_users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", pgdb.MapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update admin password: %w", domain.ErrNotFound)
	}
	return nil
}
