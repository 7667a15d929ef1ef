package auth

import (
	"context"

	"github.com/lanehart/authd/internal/domain"
)

// Login authenticates a user and issues a bearer token. Failure modes are
// deliberately distinguishable and checked in a fixed order: unknown
// account, unverified email, deactivated account, wrong password.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || plainPassword == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}

	if err := u.CanLogin(); err != nil {
		s.audit("login.blocked", map[string]string{
			"user_id":    u.ID,
			"error_code": domainCode(err),
		})
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, plainPassword); err != nil {
		s.audit("login.bad_credentials", map[string]string{"user_id": u.ID})
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	tok, err := s.issueToken(u)
	if err != nil {
		return LoginResult{}, err
	}

	s.audit("login.success", map[string]string{"user_id": u.ID})
	return LoginResult{User: u, Token: tok}, nil
}
