package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/lanehart/authd/internal/domain"
	"github.com/lanehart/authd/internal/password"
)

// SetPassword rehashes an account's password on behalf of an operator.
// With an empty plainPassword a compliant one is generated and returned
// so the caller can show it exactly once; otherwise the returned string
// is empty.
func (s *Service) SetPassword(ctx context.Context, email, plainPassword string) (generated string, err error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if plainPassword == "" {
		plainPassword, err = password.Generate(password.DefaultGeneratedLength)
		if err != nil {
			return "", err
		}
		generated = plainPassword
	} else if err := password.Validate(plainPassword); err != nil {
		return "", err
	}

	hash, err := s.hasher.Hash(ctx, plainPassword)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}

	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return "", err
	}

	s.audit("admin.set_password", map[string]string{"user_id": u.ID})
	return generated, nil
}

// CreateSuperuser provisions a pre-verified superuser account. With an
// empty plainPassword a compliant one is generated and returned alongside
// the created user.
func (s *Service) CreateSuperuser(ctx context.Context, email, name, plainPassword string) (domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, "", domain.ErrMissingField("email")
	}
	if name == "" {
		return domain.User{}, "", domain.ErrMissingField("name")
	}

	var generated string
	if plainPassword == "" {
		var err error
		plainPassword, err = password.Generate(password.DefaultGeneratedLength)
		if err != nil {
			return domain.User{}, "", err
		}
		generated = plainPassword
	} else if err := password.Validate(plainPassword); err != nil {
		return domain.User{}, "", err
	}

	hash, err := s.hasher.Hash(ctx, plainPassword)
	if err != nil {
		return domain.User{}, "", domain.ErrHashFailed(err)
	}

	username, err := generateUsername(email)
	if err != nil {
		return domain.User{}, "", domain.ErrRandomFailed(err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Verified:     true,
		Active:       true,
		Superuser:    true,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, "", err
	}

	s.audit("admin.create_superuser", map[string]string{"user_id": created.ID})
	return created, generated, nil
}

// Deactivate clears the active flag. Outstanding bearer tokens for the
// account die with it because every authenticated request re-checks the
// flag.
func (s *Service) Deactivate(ctx context.Context, email string) error {
	return s.setActive(ctx, email, false, "admin.deactivate")
}

// Reactivate restores a deactivated account.
func (s *Service) Reactivate(ctx context.Context, email string) error {
	return s.setActive(ctx, email, true, "admin.reactivate")
}

func (s *Service) setActive(ctx context.Context, email string, active bool, action string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.users.SetActive(ctx, u.ID, active); err != nil {
		return err
	}

	s.audit(action, map[string]string{"user_id": u.ID})
	return nil
}
