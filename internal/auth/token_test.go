package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	email, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if email != "a@example.com" {
		t.Errorf("Expected a@example.com, got %q", email)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret", time.Hour).Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewTokenIssuer("other", time.Hour).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("a@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	if _, err := issuer.Verify("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("Expected matching password to verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("Expected wrong password to fail")
	}
}
