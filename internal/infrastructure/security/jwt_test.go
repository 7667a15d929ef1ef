package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lanehart/authd/internal/domain"
)

func TestJWTSigner_SignAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "authd")
	tok, err := s.SignAccessToken("u1", "a@x.com", true, 2*time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}
	if tok == "" {
		t.Fatalf("expected non-empty token")
	}

	claims, err := s.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify err: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "a@x.com" || !claims.Superuser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp.IsZero() {
		t.Fatalf("expected exp to be set")
	}
}

func TestJWTSigner_Verify_Expired_ReturnsTokenExpired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "authd")
	tok, err := s.SignAccessToken("u1", "a@x.com", false, -1*time.Second)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	_, verr := s.VerifyAccessToken(tok)
	if !domain.Is(verr, "token_expired") {
		t.Fatalf("expected token_expired, got %v", verr)
	}
}

func TestJWTSigner_Verify_TamperedSignature(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "authd")
	tok, err := s.SignAccessToken("u1", "a@x.com", false, time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	// Flip one byte of the signature segment.
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments")
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, verr := s.VerifyAccessToken(tampered)
	if !domain.Is(verr, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTSigner("secret-a", "authd").SignAccessToken("u1", "a@x.com", false, time.Minute)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	_, verr := NewJWTSigner("secret-b", "authd").VerifyAccessToken(tok)
	if !domain.Is(verr, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", verr)
	}
}

func TestJWTSigner_Verify_Malformed(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner("secret", "authd")
	for _, bad := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, err := s.VerifyAccessToken(bad); !domain.Is(err, "token_invalid") {
			t.Fatalf("expected token_invalid for %q, got %v", bad, err)
		}
	}
}

func TestJWTSigner_Verify_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign err: %v", err)
	}

	s := NewJWTSigner("secret", "authd")
	if _, verr := s.VerifyAccessToken(tok); !domain.Is(verr, "token_invalid") {
		t.Fatalf("expected token_invalid for alg=none, got %v", verr)
	}
}
