package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
	"github.com/folio-dev/folio/internal/transport/auth"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier map[string]domainadmin.Identity

func (s stubVerifier) Verify(_ context.Context, token string) (domainadmin.Identity, error) {
	id, ok := s[token]
	if !ok {
		return domainadmin.Identity{}, domain.ErrUnauthorized
	}
	return id, nil
}

func newRouter() *gin.Engine {
	r := gin.New()
	v := stubVerifier{"good": {UserID: 7, Username: "ada"}}
	r.GET("/admin", auth.RequireAdmin(v), func(c *gin.Context) {
		c.String(http.StatusOK, auth.Actor(c))
	})
	return r
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{name: "bearer header", target: "/admin", header: "Bearer good", status: http.StatusOK, body: "ada"},
		{name: "lower-case scheme", target: "/admin", header: "bearer good", status: http.StatusOK, body: "ada"},
		{name: "query token", target: "/admin?access_token=good", status: http.StatusOK, body: "ada"},
		{name: "missing token", target: "/admin", status: http.StatusUnauthorized},
		{name: "invalid token", target: "/admin", header: "Bearer forged", status: http.StatusUnauthorized},
		{name: "wrong scheme", target: "/admin", header: "Basic good", status: http.StatusUnauthorized},
	}
	r := newRouter()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestActor_Anonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "anonymous", auth.Actor(c))
}
