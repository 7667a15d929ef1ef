package domain

import (
	"errors"
	"testing"
)

func TestError_ErrorString_NoCause(t *testing.T) {
	err := New(KindAuth, "invalid_credentials", "invalid email or password")

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error string")
	}
}

func TestError_ErrorString_WithCause(t *testing.T) {
	root := errors.New("root cause")
	err := Wrap(KindInternal, "hash_failed", "hash failed", root)

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
}

func TestError_Unwrap(t *testing.T) {
	root := errors.New("root")
	err := Wrap(KindInternal, "internal_error", "internal", root)

	if errors.Unwrap(err) != root {
		t.Fatalf("unwrap did not return cause")
	}
}

func TestWithMeta_AttachesMeta(t *testing.T) {
	err := ErrMissingField("email")

	if err.Meta == nil {
		t.Fatalf("expected meta to be set")
	}
	if err.Meta["field"] != "email" {
		t.Fatalf("unexpected meta value: %+v", err.Meta)
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := ErrInvalidCredentials()

	if !Is(err, "invalid_credentials") {
		t.Fatalf("expected code match")
	}
	if Is(err, "something_else") {
		t.Fatalf("unexpected code match")
	}
}

func TestIs_NonDomainError(t *testing.T) {
	err := errors.New("plain error")

	if Is(err, "invalid_credentials") {
		t.Fatalf("plain error should not match any code")
	}
}

func TestUser_CanLogin_Ordering(t *testing.T) {
	u := &User{Verified: false, Active: false}
	if !Is(u.CanLogin(), "email_not_verified") {
		t.Fatalf("unverified must be reported before inactive")
	}

	u.Verified = true
	if !Is(u.CanLogin(), "account_inactive") {
		t.Fatalf("expected account_inactive for deactivated user")
	}

	u.Active = true
	if u.CanLogin() != nil {
		t.Fatalf("verified active user should be allowed to login")
	}
}
