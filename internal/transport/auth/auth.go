// Package auth guards admin routes with bearer tokens.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
)

const identityKey = "folio.identity"

// Verifier resolves a bearer token to the admin it was issued to.
type Verifier interface {
	Verify(ctx context.Context, token string) (domainadmin.Identity, error)
}

// RequireAdmin rejects requests without a valid token. Browsers cannot set
// headers on websocket upgrades, so access_token is also read from the query.
func RequireAdmin(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing authorization token."})
			return
		}
		id, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token."})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Identity returns the admin attached by RequireAdmin.
func Identity(c *gin.Context) (domainadmin.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domainadmin.Identity{}, false
	}
	id, ok := v.(domainadmin.Identity)
	return id, ok
}

// Actor names the caller for audit logs.
func Actor(c *gin.Context) string {
	if id, ok := Identity(c); ok {
		return id.Username
	}
	return "anonymous"
}

func extractToken(c *gin.Context) string {
	bearer := c.GetHeader("Authorization")
	if len(bearer) > 7 && strings.EqualFold(bearer[:7], "Bearer ") {
		return strings.TrimSpace(bearer[7:])
	}
	return c.Query("access_token")
}
