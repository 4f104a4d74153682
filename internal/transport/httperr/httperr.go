// Package httperr maps domain errors onto HTTP responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-dev/folio/internal/domain"
)

const debugKey = "folio.debug"

const (
	msgValidation   = "Validation failed"
	msgConflict     = "Database integrity error."
	msgDataTooLarge = "Database data error (e.g., data too long)."
	msgUnauthorized = "Authentication required."
	msgUnexpected   = "An unexpected error occurred."
)

// Debug marks requests so failure bodies carry error_details.
func Debug(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enabled {
			c.Set(debugKey, true)
		}
		c.Next()
	}
}

// Respond writes the status and body for err. notFound is the message used
// when err is domain.ErrNotFound, e.g. "Project not found".
func Respond(c *gin.Context, err error, notFound string) {
	status, body := classify(err, notFound)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	if c.GetBool(debugKey) {
		body["error_details"] = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}

// Message writes a plain {"message": msg} body.
func Message(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func classify(err error, notFound string) (int, gin.H) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, gin.H{"message": msgValidation, "errors": verr.Fields}
	case errors.Is(err, domain.ErrNotFound):
		if notFound == "" {
			notFound = "Not found"
		}
		return http.StatusNotFound, gin.H{"message": notFound}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, gin.H{"message": msgUnauthorized}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, gin.H{"message": msgConflict}
	case errors.Is(err, domain.ErrDataTooLarge):
		return http.StatusUnprocessableEntity, gin.H{"message": msgDataTooLarge}
	default:
		return http.StatusInternalServerError, gin.H{"message": msgUnexpected}
	}
}
