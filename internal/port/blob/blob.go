package blob

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound            = errors.New("blob: not found")
	ErrExtensionNotAllowed = errors.New("blob: file extension not allowed")
	ErrNameTooLong         = errors.New("blob: generated name too long")
	ErrInvalidID           = errors.New("blob: invalid id")
)

// Info describes a stored blob.
type Info struct {
	ID      string
	Size    int64
	ModTime time.Time
}

// Store persists image files under generated unique names. Writes and
// deletes are not transactional; callers order them around their own commits.
type Store interface {
	Store(ctx context.Context, r io.Reader, originalName string) (string, error)
	// Remove is idempotent: removing an absent blob succeeds.
	Remove(ctx context.Context, id string) error
	Open(ctx context.Context, id string) (io.ReadSeekCloser, Info, error)
	List(ctx context.Context) ([]Info, error)
}
