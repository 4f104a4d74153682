package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	authadapter "github.com/folio-dev/folio/internal/adapter/auth"
	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
	"github.com/folio-dev/folio/internal/mocks"
	adminsvc "github.com/folio-dev/folio/internal/service/admin"
	transportadmin "github.com/folio-dev/folio/internal/transport/admin"
	"github.com/folio-dev/folio/internal/transport/auth"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	router *gin.Engine
	repo   *mocks.MockAdminRepository
	hasher *authadapter.BcryptHasher
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := fixture{
		repo:   mocks.NewMockAdminRepository(ctrl),
		hasher: authadapter.NewBcryptHasher(bcrypt.MinCost),
	}
	svc := adminsvc.NewService(f.repo, f.hasher, authadapter.NewJWTIssuer("test-secret", time.Hour),
		mocks.NewMockAdvisoryLocker(ctrl), slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := gin.New()
	api := r.Group("/api/admin")
	transportadmin.RegisterPublic(api, svc)
	protected := api.Group("", auth.RequireAdmin(svc))
	transportadmin.RegisterAdmin(protected, svc)
	f.router = r
	return f
}

func (f fixture) post(t *testing.T, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f fixture) existingAdmin(t *testing.T, password string) domainadmin.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	u := domainadmin.User{ID: 1, Username: "ada", PasswordHash: hash}
	f.repo.EXPECT().GetByUsername(gomock.Any(), "ada").Return(u, nil).AnyTimes()
	return u
}

func (f fixture) login(t *testing.T) string {
	t.Helper()
	w := f.post(t, "/api/admin/login", "", map[string]string{"username": "ada", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	tok, _ := body["access_token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

// ── POST /login ───────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.existingAdmin(t, "correct horse")

	w := f.post(t, "/api/admin/login", "", map[string]string{"username": "ada", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Bearer", body["token_type"])
	assert.InDelta(t, 3600, body["expires_in"], 2)
	assert.Equal(t, map[string]any{"id": float64(1), "username": "ada"}, body["user"])
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"wrong password", map[string]string{"username": "ada", "password": "nope nope"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "ada"}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.existingAdmin(t, "correct horse")
			w := f.post(t, "/api/admin/login", "", tc.body)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(domainadmin.User{}, domain.ErrNotFound)

	w := f.post(t, "/api/admin/login", "", map[string]string{"username": "ghost", "password": "whatever1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── POST /register ────────────────────────────────────────────────────────────

func TestRegister_RequiresToken(t *testing.T) {
	f := newFixture(t)
	w := f.post(t, "/api/admin/register", "", map[string]string{"username": "bob", "password": "long enough"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_WithToken(t *testing.T) {
	f := newFixture(t)
	f.existingAdmin(t, "correct horse")
	tok := f.login(t)

	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u domainadmin.User) (domainadmin.User, error) {
			u.ID = 2
			return u, nil
		})

	w := f.post(t, "/api/admin/register", tok, map[string]string{"username": "bob", "password": "long enough"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	f := newFixture(t)
	f.existingAdmin(t, "correct horse")
	tok := f.login(t)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(domainadmin.User{}, domain.ErrConflict)

	w := f.post(t, "/api/admin/register", tok, map[string]string{"username": "ada", "password": "long enough"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ShortPasswordIsValidationError(t *testing.T) {
	f := newFixture(t)
	f.existingAdmin(t, "correct horse")
	tok := f.login(t)

	w := f.post(t, "/api/admin/register", tok, map[string]string{"username": "bob", "password": "short"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"password"`)
}
