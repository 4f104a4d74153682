package contact

import (
	"context"

	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
)

type Repository interface {
	Create(ctx context.Context, s domaincontact.Submission) (domaincontact.Submission, error)
	GetByID(ctx context.Context, id int64) (domaincontact.Submission, error)
	// List returns one page newest first together with the total row count.
	List(ctx context.Context, limit, offset int) ([]domaincontact.Submission, int64, error)
	Delete(ctx context.Context, id int64) error
}
