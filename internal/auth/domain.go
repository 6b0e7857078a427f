package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gatekeep/gatekeep/internal/shared"
	"github.com/gatekeep/gatekeep/internal/users"
)

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Session is a resolved session token: the current user record and the caller identity.
type Session struct {
	User      *users.User
	Principal shared.Principal
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string
	IsAdmin bool
}

// UserDirectory looks up accounts by login email.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// Denylist holds revoked token ids.
type Denylist interface {
	Add(ctx context.Context, id string, ttl time.Duration) error
	Contains(ctx context.Context, id string) (bool, error)
}
