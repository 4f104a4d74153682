package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/folio-dev/folio/internal/domain"
	domainadmin "github.com/folio-dev/folio/internal/domain/admin"
	portadmin "github.com/folio-dev/folio/internal/port/admin"
)

var _ portadmin.TokenIssuer = (*JWTIssuer)(nil)

const issuer = "folio"

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTIssuer signs and verifies HS256 admin access tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) Issue(u domainadmin.User) (domainadmin.Token, error) {
	now := j.now().UTC()
	exp := now.Add(j.ttl)
	claims := Claims{
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return domainadmin.Token{}, fmt.Errorf("sign token: %w", err)
	}
	return domainadmin.Token{AccessToken: signed, ExpiresAt: exp}, nil
}

func (j *JWTIssuer) Verify(tokenString string) (domainadmin.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return domainadmin.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domainadmin.Identity{}, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	if claims.Username == "" {
		return domainadmin.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, errors.New("missing username claim"))
	}
	return domainadmin.Identity{UserID: id, Username: claims.Username}, nil
}
