package password

import (
	"strings"
	"testing"

	"github.com/lanehart/authd/internal/domain"
)

func requireReason(t *testing.T, err error, want string) {
	t.Helper()
	var de *domain.Error
	if err == nil {
		t.Fatalf("expected weak_password error, got nil")
	}
	if !domain.Is(err, "weak_password") {
		t.Fatalf("expected weak_password, got %v", err)
	}
	de = err.(*domain.Error)
	if !strings.Contains(de.Meta["reason"], want) {
		t.Fatalf("expected reason containing %q, got %q", want, de.Meta["reason"])
	}
}

func TestValidate_ShortCircuitOrder(t *testing.T) {
	t.Parallel()

	// Too short AND missing everything else: length must win.
	requireReason(t, Validate("a"), "8 characters")

	// Long enough, no digit (also no upper/special): digit must win.
	requireReason(t, Validate("abcdefgh"), "number")

	// Has digit, no uppercase.
	requireReason(t, Validate("abcdefg1"), "uppercase")

	// Has digit and uppercase, no lowercase.
	requireReason(t, Validate("ABCDEFG1"), "lowercase")

	// All classes but special.
	requireReason(t, Validate("Abcdefg1"), "special")
}

func TestValidate_Accepts(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"Abc12345!", "xY9#zzzz", "Str0ng&pass"} {
		if err := Validate(p); err != nil {
			t.Fatalf("expected %q to pass, got %v", p, err)
		}
	}
}

func TestGenerate_MeetsPolicy(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		p, err := Generate(DefaultGeneratedLength)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if len(p) != DefaultGeneratedLength {
			t.Fatalf("expected length %d, got %d", DefaultGeneratedLength, len(p))
		}
		if err := Validate(p); err != nil {
			t.Fatalf("generated password %q failed policy: %v", p, err)
		}
	}
}

func TestGenerate_NoAmbiguousCharacters(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		p, err := Generate(16)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		if strings.ContainsAny(p, "0O1lI") {
			t.Fatalf("generated password %q contains ambiguous characters", p)
		}
	}
}

func TestGenerate_RaisesShortLength(t *testing.T) {
	t.Parallel()

	p, err := Generate(3)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(p) != DefaultGeneratedLength {
		t.Fatalf("expected short request to be raised to %d, got %d", DefaultGeneratedLength, len(p))
	}
}
