package project

import (
	"context"

	domainproject "github.com/folio-dev/folio/internal/domain/project"
)

// Repository manages project persistence.
// Every mutating call is a single transaction; errors are mapped onto the
// domain error kinds (ErrNotFound, ErrConflict, ErrDataTooLarge).
type Repository interface {
	List(ctx context.Context) ([]domainproject.Project, error)
	GetByID(ctx context.Context, id int64) (domainproject.Project, error)
	Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error)
	// Update writes the mutable fields if p.Version still matches storage.
	Update(ctx context.Context, p domainproject.Project) (domainproject.Project, error)
	// Delete returns the row as it was when removed.
	Delete(ctx context.Context, id int64) (domainproject.Project, error)
	ImageFilenames(ctx context.Context) ([]string, error)
}
