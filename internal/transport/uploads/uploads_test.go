package uploads_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dev/folio/internal/adapter/filesystem"
	"github.com/folio-dev/folio/internal/transport/uploads"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *filesystem.Store) {
	t.Helper()
	store, err := filesystem.New(t.TempDir())
	require.NoError(t, err)
	r := gin.New()
	uploads.Register(r.Group("/uploads"), store)
	return r, store
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServe_StoredBlob(t *testing.T) {
	r, store := newRouter(t)
	id, err := store.Store(context.Background(), strings.NewReader("GIF89a-pixels"), "dot.gif")
	require.NoError(t, err)

	w := get(r, "/uploads/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GIF89a-pixels", w.Body.String())
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")
}

func TestServe_Missing(t *testing.T) {
	tests := []string{
		"/uploads/nope_20260101000000000000.png",
		"/uploads/..%2fsecret.png",
		"/uploads/.hidden.png",
	}
	r, _ := newRouter(t)
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusNotFound, get(r, path).Code)
		})
	}
}
