package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	require.NoError(t, h.Compare(hash, "correct horse"))
	require.ErrorIs(t, h.Compare(hash, "wrong"), domain.ErrUnauthorized)
	require.Error(t, h.Compare("not-a-hash", "x"))
	require.ErrorIs(t, h.Compare(hash, strings.Repeat("p", 100)), domain.ErrUnauthorized)

	_, err = h.Hash(strings.Repeat("p", 73))
	require.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	j := NewJWTIssuer("secret", time.Hour)
	tok, err := j.Issue(domainadmin.User{ID: 7, Username: "admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	id, err := j.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domainadmin.Identity{UserID: 7, Username: "admin"}, id)
}

func TestJWTIssuer_Rejects(t *testing.T) {
	j := NewJWTIssuer("secret", time.Hour)
	tok, err := j.Issue(domainadmin.User{ID: 7, Username: "admin"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTIssuer("other", time.Hour).Verify(tok.AccessToken)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTIssuer("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(tok.AccessToken)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := j.Verify("not.a.token")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			Username: "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   "7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Verify(unsigned)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
