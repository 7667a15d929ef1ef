// Package memory provides in-process fallbacks used in development and
// when an optional backing service is unreachable at startup.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lanehart/authd/internal/domain"
)

type UserRepo struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
	byName  map[string]string // username -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if _, exists := r.byName[u.Username]; exists {
		return domain.User{}, domain.ErrUsernameAlreadyExists()
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.byName[u.Username] = u.ID
	return u, nil
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	return r.mutate(userID, func(u *domain.User) { u.PasswordHash = newHash })
}

func (r *UserRepo) SetVerified(ctx context.Context, userID string) error {
	return r.mutate(userID, func(u *domain.User) { u.Verified = true })
}

func (r *UserRepo) SetSuperuser(ctx context.Context, userID string) error {
	return r.mutate(userID, func(u *domain.User) { u.Superuser = true })
}

func (r *UserRepo) SetActive(ctx context.Context, userID string, active bool) error {
	return r.mutate(userID, func(u *domain.User) { u.Active = active })
}

func (r *UserRepo) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.byID[userID] = u
	return nil
}
