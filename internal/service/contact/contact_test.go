package contact_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/folio-dev/folio/internal/domain"
	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
	"github.com/folio-dev/folio/internal/domain/event"
	"github.com/folio-dev/folio/internal/mocks"
	contactsvc "github.com/folio-dev/folio/internal/service/contact"
	"github.com/folio-dev/folio/internal/testutil"
)

func newContactSvc(t *testing.T) (*contactsvc.Service, *mocks.MockContactRepository, *mocks.MockEventBus, *testutil.CaptureNotifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockContactRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	n := testutil.NewCaptureNotifier()
	svc := contactsvc.NewService(repo, bus, n, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(svc.Wait)
	return svc, repo, bus, n
}

func echoCreate(_ context.Context, s domaincontact.Submission) (domaincontact.Submission, error) {
	s.ID = 11
	return s, nil
}

func valid() contactsvc.Input {
	return contactsvc.Input{Name: "Ada", Email: "ada@example.com", Message: "Hi there"}
}

// ── Submit ────────────────────────────────────────────────────────────────────

func TestSubmit_PersistsAndNotifies(t *testing.T) {
	svc, repo, bus, n := newContactSvc(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e event.Event) error {
			assert.Equal(t, event.TypeContactSubmitted, e.Type)
			assert.Equal(t, int64(11), e.EntityID)
			return nil
		})

	got, err := svc.Submit(context.Background(), valid())
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)

	select {
	case delivered := <-n.Delivered:
		assert.Equal(t, int64(11), delivered.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not dispatched")
	}
}

func TestSubmit_NotificationFailureDoesNotFailSubmit(t *testing.T) {
	svc, repo, bus, n := newContactSvc(t)
	n.Err = errors.New("mail provider down")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("bus down"))

	_, err := svc.Submit(context.Background(), valid())
	require.NoError(t, err)
	<-n.Delivered
}

func TestSubmit_NotificationOutlivesRequestContext(t *testing.T) {
	svc, repo, bus, n := newContactSvc(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(echoCreate)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Submit(ctx, valid())
	require.NoError(t, err)
	cancel()

	svc.Wait()
	assert.Len(t, n.Calls(), 1)
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		input  contactsvc.Input
		fields []string
	}{
		{"all missing", contactsvc.Input{}, []string{"name", "email", "message"}},
		{"bad email", contactsvc.Input{Name: "A", Email: "nope", Message: "m"}, []string{"email_format"}},
		{"too long", contactsvc.Input{
			Name:    strings.Repeat("n", 101),
			Email:   strings.Repeat("e", 120) + "@x.io",
			Phone:   func() *string { p := strings.Repeat("1", 51); return &p }(),
			Message: "m",
		}, []string{"name", "email", "phone"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, n := newContactSvc(t)
			_, err := svc.Submit(context.Background(), tc.input)
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			keys := make([]string, 0, len(verr.Fields))
			for k := range verr.Fields {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tc.fields, keys)
			assert.Empty(t, n.Calls())
		})
	}
}

func TestSubmit_RepoFailure(t *testing.T) {
	svc, repo, _, n := newContactSvc(t)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domaincontact.Submission{}, errors.New("db down"))

	_, err := svc.Submit(context.Background(), valid())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit contact form")
	assert.Empty(t, n.Calls())
}

// ── List / Get / Delete ───────────────────────────────────────────────────────

func TestList_Paging(t *testing.T) {
	tests := []struct {
		name              string
		page, perPage     int
		wantLimit, wantOf int
		wantPage          int
	}{
		{"defaults", 0, 0, 20, 0, 1},
		{"third page", 3, 10, 10, 20, 3},
		{"clamped", 1, 1000, 100, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, repo, _, _ := newContactSvc(t)
			repo.EXPECT().List(gomock.Any(), tc.wantLimit, tc.wantOf).
				Return([]domaincontact.Submission{{ID: 1}}, int64(45), nil)

			page, err := svc.List(context.Background(), tc.page, tc.perPage)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage, page.CurrentPage)
			assert.Equal(t, int64(45), page.Total)
			assert.Len(t, page.Submissions, 1)
		})
	}
}

func TestGetAndDelete(t *testing.T) {
	svc, repo, _, _ := newContactSvc(t)
	repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(domaincontact.Submission{ID: 4}, nil)
	repo.EXPECT().GetByID(gomock.Any(), int64(5)).Return(domaincontact.Submission{}, domain.ErrNotFound)
	repo.EXPECT().Delete(gomock.Any(), int64(4)).Return(nil)
	repo.EXPECT().Delete(gomock.Any(), int64(5)).Return(domain.ErrNotFound)

	got, err := svc.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)

	_, err = svc.Get(context.Background(), 5)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), "admin", 4))
	require.ErrorIs(t, svc.Delete(context.Background(), "admin", 5), domain.ErrNotFound)
}
