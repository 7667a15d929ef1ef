package security

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"

	"github.com/lanehart/authd/internal/domain"
)

// DefaultBcryptCost is deliberately above the library default; hashing is
// supposed to be slow.
const DefaultBcryptCost = 12

// BcryptHasher bounds concurrent hashing with a semaphore so the CPU cost
// of bcrypt cannot starve unrelated requests. Acquisition honors context
// cancellation; Compare shares the same bound because it costs the same.
type BcryptHasher struct {
	cost int
	sem  chan struct{}
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 2 {
		workers = 2
	}
	return &BcryptHasher{
		cost: cost,
		sem:  make(chan struct{}, workers),
	}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	select {
	case h.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-h.sem }()

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domain.ErrHashFailed(err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
