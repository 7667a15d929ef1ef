package auth

import (
	"context"

	"github.com/lanehart/authd/internal/domain"
)

// Promote grants superuser privileges to a verified, active account.
// Promoting an account that is already a superuser is a no-op success.
func (s *Service) Promote(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}

	if u.Superuser {
		return u, nil
	}

	if err := u.CanLogin(); err != nil {
		s.audit("promote.blocked", map[string]string{
			"user_id":    u.ID,
			"error_code": domainCode(err),
		})
		return domain.User{}, err
	}

	if err := s.users.SetSuperuser(ctx, u.ID); err != nil {
		return domain.User{}, err
	}
	u.Superuser = true

	s.audit("promote.success", map[string]string{"user_id": u.ID})
	return u, nil
}
