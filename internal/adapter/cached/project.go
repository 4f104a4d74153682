package cached

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainproject "github.com/folio-dev/folio/internal/domain/project"
	portcache "github.com/folio-dev/folio/internal/port/cache"
	portproject "github.com/folio-dev/folio/internal/port/project"
)

var _ portproject.Repository = (*ProjectRepository)(nil)

const (
	// genKey holds the current list generation. Every write replaces it, so a
	// List that read storage before the write stores its snapshot under a
	// generation no reader asks for again.
	genKey        = "projects:gen"
	listKeyPrefix = "projects:all:"
	initialGen    = "0"
	minGenTTL     = 24 * time.Hour
)

// cachedProject mirrors domainproject.Project but keeps Version, which the
// public JSON shape hides.
type cachedProject struct {
	domainproject.Project
	Version int64 `json:"version"`
}

// ProjectRepository serves List from a cache and moves to a fresh list
// generation after every successful mutation. Cache failures are logged and
// bypassed.
type ProjectRepository struct {
	inner  portproject.Repository
	cache  portcache.Cache
	ttl    time.Duration
	genTTL time.Duration
}

func NewProjectRepository(inner portproject.Repository, cache portcache.Cache, ttl time.Duration) *ProjectRepository {
	genTTL := minGenTTL
	if 2*ttl > genTTL {
		genTTL = 2 * ttl
	}
	return &ProjectRepository{inner: inner, cache: cache, ttl: ttl, genTTL: genTTL}
}

func (r *ProjectRepository) List(ctx context.Context) ([]domainproject.Project, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.inner.List(ctx)
	}
	key := listKeyPrefix + gen

	if data, err := r.cache.Get(ctx, key); err == nil {
		var cached []cachedProject
		if err := json.Unmarshal(data, &cached); err == nil {
			out := make([]domainproject.Project, len(cached))
			for i, c := range cached {
				out[i] = c.Project
				out[i].Version = c.Version
			}
			return out, nil
		}
		slog.WarnContext(ctx, "project cache: dropping undecodable entry", "key", key)
	} else if !errors.Is(err, portcache.ErrMiss) {
		slog.WarnContext(ctx, "project cache: get failed", "key", key, "error", err)
	}

	projects, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	cached := make([]cachedProject, len(projects))
	for i, p := range projects {
		cached[i] = cachedProject{Project: p, Version: p.Version}
	}
	data, err := json.Marshal(cached)
	if err == nil {
		err = r.cache.Set(ctx, key, data, r.ttl)
	}
	if err != nil {
		slog.WarnContext(ctx, "project cache: set failed", "key", key, "error", err)
	}
	return projects, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (domainproject.Project, error) {
	return r.inner.GetByID(ctx, id)
}

func (r *ProjectRepository) Create(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	out, err := r.inner.Create(ctx, p)
	if err == nil {
		r.invalidate(ctx)
	}
	return out, err
}

func (r *ProjectRepository) Update(ctx context.Context, p domainproject.Project) (domainproject.Project, error) {
	out, err := r.inner.Update(ctx, p)
	if err == nil {
		r.invalidate(ctx)
	}
	return out, err
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) (domainproject.Project, error) {
	out, err := r.inner.Delete(ctx, id)
	if err == nil {
		r.invalidate(ctx)
	}
	return out, err
}

func (r *ProjectRepository) ImageFilenames(ctx context.Context) ([]string, error) {
	return r.inner.ImageFilenames(ctx)
}

// generation returns the current list generation. ok is false when the
// cache cannot be read, in which case List goes straight to storage.
func (r *ProjectRepository) generation(ctx context.Context) (string, bool) {
	data, err := r.cache.Get(ctx, genKey)
	switch {
	case err == nil:
		return string(data), true
	case errors.Is(err, portcache.ErrMiss):
		return initialGen, true
	default:
		slog.WarnContext(ctx, "project cache: get failed", "key", genKey, "error", err)
		return "", false
	}
}

// invalidate drops the current list and starts a new generation.
func (r *ProjectRepository) invalidate(ctx context.Context) {
	if gen, ok := r.generation(ctx); ok {
		if err := r.cache.Invalidate(ctx, listKeyPrefix+gen); err != nil {
			slog.WarnContext(ctx, "project cache: invalidate failed", "key", listKeyPrefix+gen, "error", err)
		}
	}
	if err := r.cache.Set(ctx, genKey, []byte(uuid.NewString()), r.genTTL); err != nil {
		slog.WarnContext(ctx, "project cache: generation bump failed", "key", genKey, "error", err)
	}
}
