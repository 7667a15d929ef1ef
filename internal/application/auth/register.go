package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/lanehart/authd/internal/domain"
	"github.com/lanehart/authd/internal/password"
)

// Register creates an unverified account and triggers the verification
// mail. Duplicate emails are rejected by the store's unique constraint,
// so two concurrent signups for the same address leave exactly one row.
func (s *Service) Register(ctx context.Context, email, name, plainPassword string) (RegisterResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return RegisterResult{}, domain.ErrMissingField("email")
	}
	if name == "" {
		return RegisterResult{}, domain.ErrMissingField("name")
	}
	if err := password.Validate(plainPassword); err != nil {
		return RegisterResult{}, err
	}

	hash, err := s.hasher.Hash(ctx, plainPassword)
	if err != nil {
		return RegisterResult{}, domain.ErrHashFailed(err)
	}

	username, err := generateUsername(email)
	if err != nil {
		return RegisterResult{}, domain.ErrRandomFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Verified:     false,
		Active:       true,
		Superuser:    false,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return RegisterResult{}, err
	}

	// The account exists at this point; a failed mail must not fail the
	// signup. The user can ask for a resend.
	if err := s.sendVerification(ctx, created); err != nil {
		s.audit("register.notify_failed", map[string]string{
			"user_id":    created.ID,
			"error_code": domainCode(err),
		})
	}

	s.audit("register.success", map[string]string{"user_id": created.ID})
	return RegisterResult{User: created}, nil
}

func (s *Service) sendVerification(ctx context.Context, u domain.User) error {
	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}
	if err := s.ott.Save(ctx, TokenVerifyEmail, token, u.ID, s.verifyEmailTTL); err != nil {
		return err
	}
	return s.notifier.SendVerifyEmail(ctx, Notification{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		URL:    s.verifyEmailBaseURL + token,
	})
}
