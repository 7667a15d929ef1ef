package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/lanehart/authd/internal/domain"
)

type Service struct {
	users    UserRepo
	hasher   PasswordHasher
	signer   TokenSigner
	ott      OneTimeTokenStore
	notifier Notifier

	accessTTL time.Duration
	audit     func(action string, fields map[string]string)

	// URLs used to build links delivered by the notifier
	verifyEmailBaseURL   string // e.g. https://app/api/v1/auth/verify-email/
	passwordResetBaseURL string // e.g. https://frontend/reset-password/
	verifyEmailTTL       time.Duration
	passwordResetTTL     time.Duration
}

type Config struct {
	AccessTTL             time.Duration
	VerifyEmailBaseURL    string
	PasswordResetBaseURL  string
	VerifyEmailTokenTTL   time.Duration
	PasswordResetTokenTTL time.Duration
}

func NewService(
	users UserRepo,
	hasher PasswordHasher,
	signer TokenSigner,
	ott OneTimeTokenStore,
	notifier Notifier,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	verifyTTL := cfg.VerifyEmailTokenTTL
	if verifyTTL <= 0 {
		verifyTTL = 24 * time.Hour
	}
	resetTTL := cfg.PasswordResetTokenTTL
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		signer:   signer,
		ott:      ott,
		notifier: notifier,
		audit:    func(string, map[string]string) {},

		accessTTL: accessTTL,

		verifyEmailBaseURL:   cfg.VerifyEmailBaseURL,
		passwordResetBaseURL: cfg.PasswordResetBaseURL,
		verifyEmailTTL:       verifyTTL,
		passwordResetTTL:     resetTTL,
	}
}

// BearerToken is the token output for handlers/DTO mapping.
type BearerToken struct {
	AccessToken string
	TokenType   string // "Bearer"
	ExpiresIn   int64  // seconds
}

type RegisterResult struct {
	User domain.User
}

type LoginResult struct {
	User  domain.User
	Token BearerToken
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

func (s *Service) issueToken(u domain.User) (BearerToken, error) {
	access, err := s.signer.SignAccessToken(u.ID, u.Email, u.Superuser, s.accessTTL)
	if err != nil {
		return BearerToken{}, domain.ErrTokenSignFailed(err)
	}
	return BearerToken{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// usernameSuffixAlphabet avoids 0/O and 1/l/I so generated usernames
// stay readable.
const usernameSuffixAlphabet = "23456789abcdefghijkmnpqrstuvwxyz"

// generateUsername derives a username from the email local part plus a
// random 6-character suffix. Assigned once at creation, never regenerated.
func generateUsername(email string) (string, error) {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}
	max := big.NewInt(int64(len(usernameSuffixAlphabet)))
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = usernameSuffixAlphabet[n.Int64()]
	}
	return local + "_" + string(suffix), nil
}
