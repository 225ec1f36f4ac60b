package auth

import (
	"testing"
	"time"
)

func testManager() *Manager {
	return &Manager{
		Secret:     []byte("test-secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
		Issuer:     "islebook-backend",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager()
	token, err := m.NewAccessToken("amy@example.com", "Amy Pace")
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Email != "amy@example.com" || claims.Name != "Amy Pace" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != "islebook-backend" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m := testManager()
	token, err := m.NewAccessToken("amy@example.com", "Amy Pace")
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}

	other := testManager()
	other.Secret = []byte("other-secret")
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if err := ComparePassword(hash, "hunter22"); err != nil {
		t.Fatalf("ComparePassword error: %v", err)
	}
	if err := ComparePassword(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := ComparePassword("", "hunter22"); err == nil {
		t.Fatalf("empty stored hash must never match")
	}
}

func TestHashPasswordLengthGuard(t *testing.T) {
	if _, err := HashPassword(""); err != ErrPasswordLength {
		t.Fatalf("expected ErrPasswordLength for empty input, got %v", err)
	}
	long := make([]byte, maxPasswordBytes+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := HashPassword(string(long)); err != ErrPasswordLength {
		t.Fatalf("expected ErrPasswordLength for oversized input, got %v", err)
	}
}
