package admin

import (
	"context"

	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
)

type Repository interface {
	Create(ctx context.Context, u domainadmin.User) (domainadmin.User, error)
	GetByUsername(ctx context.Context, username string) (domainadmin.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(u domainadmin.User) (domainadmin.Token, error)
	Verify(token string) (domainadmin.Identity, error)
}
