package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	domainproject "github.com/folio-dev/folio/internal/domain/project"
	"github.com/folio-dev/folio/internal/metrics"
	portblob "github.com/folio-dev/folio/internal/port/blob"
)

var _ portblob.Store = (*Store)(nil)

const (
	timestampLayout = "20060102150405"
	maxAttempts     = 5
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Store keeps blobs as flat files under a single root directory.
type Store struct {
	root string
	now  func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source used for generated ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates root if needed and returns a store rooted there.
func New(root string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	s := &Store{root: root, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) Store(ctx context.Context, r io.Reader, originalName string) (id string, err error) {
	defer func() { metrics.ObserveBlobOp("store", err) }()

	if !domainproject.AllowedExtension(originalName) {
		return "", portblob.ErrExtensionNotAllowed
	}
	ext := domainproject.Extension(originalName)
	base := sanitize(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		id = GenerateID(base, ext, s.now())
		if len(id) > domainproject.MaxImageFilenameLength {
			return "", fmt.Errorf("%w: %d characters", portblob.ErrNameTooLong, len(id))
		}

		f, err := os.OpenFile(filepath.Join(s.root, id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create blob %s: %w", id, err)
		}
		if err := write(f, r); err != nil {
			os.Remove(f.Name()) //nolint:errcheck
			return "", fmt.Errorf("write blob %s: %w", id, err)
		}
		return id, nil
	}
	return "", fmt.Errorf("create blob: no free name after %d attempts", maxAttempts)
}

func write(f *os.File, r io.Reader) error {
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) Remove(_ context.Context, id string) (err error) {
	defer func() { metrics.ObserveBlobOp("remove", err) }()

	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w", id, err)
	}
	return nil
}

func (s *Store) Open(_ context.Context, id string) (io.ReadSeekCloser, portblob.Info, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, portblob.Info{}, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, portblob.Info{}, portblob.ErrNotFound
	}
	if err != nil {
		return nil, portblob.Info{}, fmt.Errorf("open blob %s: %w", id, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, portblob.Info{}, fmt.Errorf("stat blob %s: %w", id, err)
	}
	if st.IsDir() {
		f.Close()
		return nil, portblob.Info{}, portblob.ErrNotFound
	}
	return f, portblob.Info{ID: id, Size: st.Size(), ModTime: st.ModTime()}, nil
}

func (s *Store) List(_ context.Context) ([]portblob.Info, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	out := make([]portblob.Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, portblob.Info{ID: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}

// path resolves id inside the root, rejecting anything that could escape it.
func (s *Store) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", portblob.ErrInvalidID, id)
	}
	return filepath.Join(s.root, id), nil
}

// GenerateID builds "<slug>_<YYYYMMDDhhmmss><micros>.<ext>".
func GenerateID(slug, ext string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s_%s%06d.%s", slug, t.Format(timestampLayout), t.Nanosecond()/1000, ext)
}

func sanitize(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "image"
	}
	return slug
}
