package admin

import (
	"strings"
	"time"
)

const (
	MaxUsernameLength = 80
	MinPasswordLength = 8
	// MaxPasswordLength is in bytes; bcrypt rejects longer input.
	MaxPasswordLength = 72
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func New(username, passwordHash string) User {
	return User{
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// Identity is the authenticated caller attached to admin requests.
type Identity struct {
	UserID   int64
	Username string
}

// Token is an issued bearer credential.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ProvisionResult describes what an idempotent provisioning run did.
type ProvisionResult string

const (
	ProvisionCreated   ProvisionResult = "created"
	ProvisionUnchanged ProvisionResult = "unchanged"
	ProvisionReset     ProvisionResult = "reset"
)
