package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/domain"
)

type ottEntry struct {
	userID    string
	expiresAt time.Time
	savedAt   time.Time
}

type OneTimeTokenStore struct {
	mu sync.RWMutex
	// kind|token -> entry
	data map[string]ottEntry
}

func NewOneTimeTokenStore() *OneTimeTokenStore {
	return &OneTimeTokenStore{data: make(map[string]ottEntry)}
}

func key(kind auth.OneTimeTokenKind, token string) string { return string(kind) + "|" + token }

func (s *OneTimeTokenStore) Save(ctx context.Context, kind auth.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.data[key(kind, token)] = ottEntry{userID: userID, expiresAt: now.Add(ttl), savedAt: now}
	return nil
}

// LastToken returns the most recently issued live token of the given
// kind for a user. Dev-mode tooling only; tokens normally travel by
// email.
func (s *OneTimeTokenStore) LastToken(kind auth.OneTimeTokenKind, userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := string(kind) + "|"
	var best string
	var bestAt time.Time
	now := time.Now()
	for k, e := range s.data {
		if e.userID != userID || now.After(e.expiresAt) {
			continue
		}
		if len(k) > len(prefix) && k[:len(prefix)] == prefix && e.savedAt.After(bestAt) {
			best = k[len(prefix):]
			bestAt = e.savedAt
		}
	}
	return best
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(kind, token)
	e, ok := s.data[k]
	if !ok {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	delete(s.data, k)
	if time.Now().After(e.expiresAt) {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	return e.userID, nil
}

func (s *OneTimeTokenStore) Peek(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(kind, token)]
	if !ok || time.Now().After(e.expiresAt) {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	return e.userID, nil
}
