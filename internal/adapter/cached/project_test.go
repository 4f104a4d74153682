package cached_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/folio-dev/folio/internal/adapter/cached"
	"github.com/folio-dev/folio/internal/adapter/memory"
	domainproject "github.com/folio-dev/folio/internal/domain/project"
	"github.com/folio-dev/folio/internal/mocks"
	portcache "github.com/folio-dev/folio/internal/port/cache"
)

func newCachedRepo(t *testing.T) (*cached.ProjectRepository, *mocks.MockProjectRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockProjectRepository(ctrl)
	return cached.NewProjectRepository(inner, memory.NewCache(), time.Minute), inner
}

func sample() []domainproject.Project {
	return []domainproject.Project{
		{ID: 2, Name: "newer", DateAdded: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), Version: 3},
		{ID: 1, Name: "older", DateAdded: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Version: 1},
	}
}

func TestList_HitsInnerOnceThenCache(t *testing.T) {
	repo, inner := newCachedRepo(t)
	ctx := context.Background()
	inner.EXPECT().List(gomock.Any()).Return(sample(), nil).Times(1)

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)

	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, int64(3), second[0].Version)
	assert.True(t, first[1].DateAdded.Equal(second[1].DateAdded))
}

func TestMutationsInvalidateList(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(repo *cached.ProjectRepository, inner *mocks.MockProjectRepository) error
	}{
		{
			name: "create",
			mutate: func(repo *cached.ProjectRepository, inner *mocks.MockProjectRepository) error {
				inner.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainproject.Project{ID: 3}, nil)
				_, err := repo.Create(ctx, domainproject.Project{Name: "x"})
				return err
			},
		},
		{
			name: "update",
			mutate: func(repo *cached.ProjectRepository, inner *mocks.MockProjectRepository) error {
				inner.EXPECT().Update(gomock.Any(), gomock.Any()).Return(domainproject.Project{ID: 1}, nil)
				_, err := repo.Update(ctx, domainproject.Project{ID: 1})
				return err
			},
		},
		{
			name: "delete",
			mutate: func(repo *cached.ProjectRepository, inner *mocks.MockProjectRepository) error {
				inner.EXPECT().Delete(gomock.Any(), int64(1)).Return(domainproject.Project{ID: 1}, nil)
				_, err := repo.Delete(ctx, 1)
				return err
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, inner := newCachedRepo(t)
			inner.EXPECT().List(gomock.Any()).Return(sample(), nil).Times(2)

			_, err := repo.List(ctx)
			require.NoError(t, err)
			require.NoError(t, tc.mutate(repo, inner))
			_, err = repo.List(ctx)
			require.NoError(t, err)
		})
	}
}

func TestList_SnapshotReadBeforeDeleteIsNotServed(t *testing.T) {
	repo, inner := newCachedRepo(t)
	ctx := context.Background()

	reading := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		inner.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]domainproject.Project, error) {
			snapshot := sample()
			close(reading)
			<-release
			return snapshot, nil
		}),
		inner.EXPECT().List(gomock.Any()).Return(sample()[1:], nil),
	)
	inner.EXPECT().Delete(gomock.Any(), int64(2)).Return(sample()[0], nil)

	done := make(chan error, 1)
	go func() {
		_, err := repo.List(ctx)
		done <- err
	}()

	<-reading
	_, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	close(release)
	require.NoError(t, <-done)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestWriteThroughOneInstanceInvalidatesAnother(t *testing.T) {
	ctrl := gomock.NewController(t)
	shared := memory.NewCache()
	innerA := mocks.NewMockProjectRepository(ctrl)
	innerB := mocks.NewMockProjectRepository(ctrl)
	replicaA := cached.NewProjectRepository(innerA, shared, time.Minute)
	replicaB := cached.NewProjectRepository(innerB, shared, time.Minute)
	ctx := context.Background()

	innerA.EXPECT().List(gomock.Any()).Return(sample(), nil)
	innerB.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainproject.Project{ID: 3}, nil)
	innerA.EXPECT().List(gomock.Any()).Return(append([]domainproject.Project{{ID: 3}}, sample()...), nil)

	_, err := replicaA.List(ctx)
	require.NoError(t, err)
	_, err = replicaB.Create(ctx, domainproject.Project{Name: "x"})
	require.NoError(t, err)

	got, err := replicaA.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestFailedMutationKeepsCache(t *testing.T) {
	repo, inner := newCachedRepo(t)
	ctx := context.Background()
	inner.EXPECT().List(gomock.Any()).Return(sample(), nil).Times(1)
	inner.EXPECT().Delete(gomock.Any(), int64(9)).Return(domainproject.Project{}, errors.New("boom"))

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.Delete(ctx, 9)
	require.Error(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (brokenCache) Invalidate(context.Context, string) error { return errors.New("down") }

var _ portcache.Cache = brokenCache{}

func TestCacheFailuresFallThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := mocks.NewMockProjectRepository(ctrl)
	repo := cached.NewProjectRepository(inner, brokenCache{}, time.Minute)
	ctx := context.Background()

	inner.EXPECT().List(gomock.Any()).Return(sample(), nil).Times(2)
	inner.EXPECT().Delete(gomock.Any(), int64(1)).Return(domainproject.Project{ID: 1}, nil)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	_, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
}
