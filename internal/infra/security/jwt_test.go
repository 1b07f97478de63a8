package security

import (
	"errors"
	"testing"
	"time"
)

func newTestSessionManager(t *testing.T, now time.Time, ttl time.Duration) *SessionManager {
	t.Helper()

	manager, err := NewSessionManager("jwt-test-secret-0123456789", "gameverse-test", ttl)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	return manager.WithClock(func() time.Time { return now })
}

func TestSessionManager_IssueAndVerify(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	manager := newTestSessionManager(t, now, time.Hour)

	token, err := manager.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != RoleUser {
		t.Fatalf("role = %q, want %q", claims.Role, RoleUser)
	}
	if claims.Issuer != "gameverse-test" {
		t.Fatalf("issuer = %q, want gameverse-test", claims.Issuer)
	}
}

func TestSessionManager_RejectsExpiredToken(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	manager := newTestSessionManager(t, now, time.Minute)

	token, err := manager.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	manager.WithClock(func() time.Time { return now.Add(2 * time.Minute) })

	if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionManager_RejectsForeignSignature(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	issuer := newTestSessionManager(t, now, time.Hour)

	other, err := NewSessionManager("a-completely-different-secret", "gameverse-test", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	other.WithClock(func() time.Time { return now })

	token, err := issuer.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionManager_RejectsWrongIssuer(t *testing.T) {
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	issuer := newTestSessionManager(t, now, time.Hour)

	verifier, err := NewSessionManager("jwt-test-secret-0123456789", "someone-else", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager returned error: %v", err)
	}
	verifier.WithClock(func() time.Time { return now })

	token, err := issuer.Issue("user-1", RoleUser)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestSessionManager_IssueValidation(t *testing.T) {
	manager := newTestSessionManager(t, time.Now(), time.Hour)

	if _, err := manager.Issue("", RoleUser); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if _, err := manager.Issue("user-1", "superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestNewSessionManager_RequiresSecret(t *testing.T) {
	if _, err := NewSessionManager("   ", "gameverse", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}
