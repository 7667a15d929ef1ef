package auth

import (
	"context"
	"strings"

	"github.com/lanehart/authd/internal/domain"
)

// RequestEmailVerification re-issues a verification token for an account
// that never completed signup verification.
// IMPORTANT: non-enumerating - if user not found, return nil.
func (s *Service) RequestEmailVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if u.Verified {
		return nil
	}

	return s.sendVerification(ctx, u)
}

// VerifyEmail consumes the token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}

	userID, err := s.ott.Consume(ctx, TokenVerifyEmail, token)
	if err != nil {
		return err
	}

	if err := s.users.SetVerified(ctx, userID); err != nil {
		return err
	}

	s.audit("verify_email.success", map[string]string{"user_id": userID})
	return nil
}
