package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/folio-dev/folio/internal/domain"
)

// Postgres SQLSTATE codes mapped onto domain error kinds.
const (
	codeUniqueViolation      = "23505"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeStringDataTruncation = "22001"
)

// MapError translates driver errors into domain kinds, keeping the original
// in the chain for logging. Unknown errors pass through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation, codeNotNullViolation, codeCheckViolation:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case codeStringDataTruncation:
			return fmt.Errorf("%w: %w", domain.ErrDataTooLarge, err)
		}
	}
	return err
}
