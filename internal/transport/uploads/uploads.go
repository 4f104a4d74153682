package uploads

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	portblob "github.com/folio-dev/folio/internal/port/blob"
)

// Register serves stored images at GET <rg>/*id.
func Register(rg *gin.RouterGroup, blobs portblob.Store) {
	rg.GET("/*id", serve(blobs))
}

func serve(blobs portblob.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimPrefix(c.Param("id"), "/")
		rc, info, err := blobs.Open(c.Request.Context(), id)
		if errors.Is(err, portblob.ErrNotFound) || errors.Is(err, portblob.ErrInvalidID) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "File not found"})
			return
		}
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "open blob failed", "image", id, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "An unexpected error occurred."})
			return
		}
		defer rc.Close()

		// Blob ids are never reused, so the content behind a URL never changes.
		c.Header("Cache-Control", "public, max-age=31536000, immutable")
		c.Header("X-Content-Type-Options", "nosniff")
		http.ServeContent(c.Writer, c.Request, info.ID, info.ModTime, rc)
	}
}
