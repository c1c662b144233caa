package token

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/taskdeck/internal/platform/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: "test-signing-secret", TTL: time.Hour}, now)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestIssueAndResolveRoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedClock(issuedAt))

	credential, err := svc.Issue(Identity{ID: 7, Username: "alicesmith", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := svc.Resolve(credential)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if userID != 7 {
		t.Fatalf("user id = %d, want 7", userID)
	}
}

func TestResolveRejectsExpiredCredential(t *testing.T) {
	issuedAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	issuer := newTestService(t, fixedClock(issuedAt))

	credential, err := issuer.Issue(Identity{ID: 7, Username: "alicesmith", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// One hour and one second later the credential is past its validity window.
	late := newTestService(t, fixedClock(issuedAt.Add(time.Hour+time.Second)))
	if _, err := late.Resolve(credential); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestResolveRejectsWrongSecret(t *testing.T) {
	now := fixedClock(time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC))
	issuer := newTestService(t, now)
	credential, err := issuer.Issue(Identity{ID: 7})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other, err := NewService(Config{Secret: "a-different-secret"}, now)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := other.Resolve(credential); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestResolveRejectsGarbageAndEmpty(t *testing.T) {
	svc := newTestService(t, nil)

	for _, credential := range []string{"", "  ", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Resolve(credential); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("credential %q: expected unauthenticated, got %v", credential, err)
		}
	}
}

func TestResolveErrorCarriesUnauthenticatedCode(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Resolve("bogus")
	if apperrors.CodeOf(err) != apperrors.CodeUnauthenticated {
		t.Fatalf("code = %q, want %q", apperrors.CodeOf(err), apperrors.CodeUnauthenticated)
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Config{Secret: "   "}, nil); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TASKDECK_JWT_SECRET", "env-secret")
	t.Setenv("TASKDECK_JWT_TTL", "30m")

	cfg, err := LoadConfigFromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Secret != "env-secret" {
		t.Fatalf("secret = %q, want env-secret", cfg.Secret)
	}
	if cfg.TTL != 30*time.Minute {
		t.Fatalf("ttl = %v, want 30m", cfg.TTL)
	}
}

func TestLoadConfigFromEnvRequiresSecret(t *testing.T) {
	t.Setenv("TASKDECK_JWT_SECRET", "")
	if _, err := LoadConfigFromEnv(); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
