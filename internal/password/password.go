// Package password holds the secret-strength policy and a generator for
// random compliant secrets. Both are pure and safe for concurrent use.
package password

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/lanehart/authd/internal/domain"
)

const (
	// MinLength is the policy floor, not a recommendation.
	MinLength = 8

	// DefaultGeneratedLength is used by the CLI tools when no password
	// is supplied.
	DefaultGeneratedLength = 12

	// specials is the fixed set the policy accepts.
	specials = "!@#$%^&*"

	// alphabet excludes visually ambiguous characters (0/O, 1/l/I)
	// while keeping all four required character classes.
	alphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ" + specials

	// A random draw can miss a character class; regenerating is cheap
	// and in practice succeeds on the first attempt.
	maxGenerateAttempts = 32
)

// Validate checks candidate against the policy and returns the first
// violated rule only. Rules are checked in a fixed order: length, digit,
// uppercase, lowercase, special character.
func Validate(candidate string) error {
	if len(candidate) < MinLength {
		return domain.ErrWeakPassword("password must be at least 8 characters long")
	}
	if !strings.ContainsAny(candidate, "0123456789") {
		return domain.ErrWeakPassword("password must contain at least one number")
	}
	if !strings.ContainsAny(candidate, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return domain.ErrWeakPassword("password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(candidate, "abcdefghijklmnopqrstuvwxyz") {
		return domain.ErrWeakPassword("password must contain at least one lowercase letter")
	}
	if !strings.ContainsAny(candidate, specials) {
		return domain.ErrWeakPassword("password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// Generate returns a random secret of the given length drawn from the
// unambiguous alphabet, retrying until the result passes Validate.
// Lengths below MinLength are raised to DefaultGeneratedLength.
func Generate(length int) (string, error) {
	if length < MinLength {
		length = DefaultGeneratedLength
	}
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := draw(length)
		if err != nil {
			return "", domain.ErrRandomFailed(err)
		}
		if Validate(candidate) == nil {
			return candidate, nil
		}
	}
	return "", domain.ErrRandomFailed(nil)
}

func draw(length int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}
