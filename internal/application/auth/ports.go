package auth

import (
	"context"
	"time"

	"github.com/lanehart/authd/internal/domain"
)

/*
UserRepo
--------
Persistence port for users.
Only describes WHAT the workflow needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// Updates needed by business flows
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
	SetVerified(ctx context.Context, userID string) error
	SetSuperuser(ctx context.Context, userID string) error
	SetActive(ctx context.Context, userID string, active bool) error
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies bearer tokens (JWT).
Used by service + auth middleware.
*/
type TokenClaims struct {
	UserID    string
	Email     string
	Superuser bool
	Exp       time.Time
}

type TokenSigner interface {
	SignAccessToken(userID, email string, superuser bool, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (TokenClaims, error)
}

/*
OneTimeTokenStore
-----------------
Purpose-tagged opaque single-use tokens. A token is valid for exactly one
purpose; consuming a verify token never touches an outstanding reset token
for the same account, and vice versa.
*/
type OneTimeTokenKind string

const (
	TokenVerifyEmail   OneTimeTokenKind = "verify_email"
	TokenPasswordReset OneTimeTokenKind = "password_reset"
)

type OneTimeTokenStore interface {
	Save(ctx context.Context, kind OneTimeTokenKind, token string, userID string, ttl time.Duration) error
	Consume(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error)
	Peek(ctx context.Context, kind OneTimeTokenKind, token string) (userID string, err error)
}

/*
Notifier
--------
Delivers verification and reset mails. Implementations: direct SMTP,
a broker publisher for deployments with a separate mail worker, or a
logging no-op for dev. Only the send contract matters here.
*/
type Notification struct {
	UserID string
	Email  string
	Name   string
	URL    string
}

type Notifier interface {
	SendVerifyEmail(ctx context.Context, n Notification) error
	SendPasswordReset(ctx context.Context, n Notification) error
}
