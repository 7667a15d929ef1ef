package auth

import (
	"context"
	"strings"

	"github.com/lanehart/authd/internal/domain"
	"github.com/lanehart/authd/internal/password"
)

// RequestPasswordReset issues a reset token and triggers the reset mail.
// IMPORTANT: non-enumerating - the caller always reports success, and an
// unknown email is a silent no-op here.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	if err := s.ott.Save(ctx, TokenPasswordReset, token, u.ID, s.passwordResetTTL); err != nil {
		return err
	}

	s.audit("password_reset.requested", map[string]string{"user_id": u.ID})
	return s.notifier.SendPasswordReset(ctx, Notification{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		URL:    s.passwordResetBaseURL + token,
	})
}

// ValidateResetToken checks a reset token without consuming it.
func (s *Service) ValidateResetToken(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	_, err := s.ott.Peek(ctx, TokenPasswordReset, token)
	return err
}

// ResetPassword consumes the token and sets a new password. Strength is
// checked before the token is consumed so a weak password does not burn
// an otherwise valid token.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if err := password.Validate(newPassword); err != nil {
		return err
	}

	userID, err := s.ott.Consume(ctx, TokenPasswordReset, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	s.audit("password_reset.success", map[string]string{"user_id": userID})
	return nil
}
