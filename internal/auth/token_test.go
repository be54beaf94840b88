package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

func TestResolveIdentityRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	p := &domain.Principal{ID: 42, Name: "Ana", Email: "ana@example.com", Role: domain.RoleTechnician}

	token, exp, err := tm.GenerateToken(p)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	resolved, ok := tm.ResolveIdentity(token)
	if !ok {
		t.Fatal("valid token must resolve")
	}
	if resolved.ID != 42 || resolved.Role != domain.RoleTechnician || resolved.Email != "ana@example.com" {
		t.Fatalf("resolved = %+v", resolved)
	}
}

func TestResolveIdentityAbsent(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.broken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := tm.ResolveIdentity(tc.raw); ok {
				t.Fatal("must resolve to absent")
			}
		})
	}
}

func TestResolveIdentityWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 60)
	verifier := NewTokenManager("secret-b", 60)
	p := &domain.Principal{ID: 1, Role: domain.RoleRequester}

	token, _, err := issuer.GenerateToken(p)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, ok := verifier.ResolveIdentity(token); ok {
		t.Fatal("token signed with another secret must resolve to absent")
	}
}

func TestResolveIdentityExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	tm.ttl = -time.Minute

	token, _, err := tm.GenerateToken(&domain.Principal{ID: 1, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, ok := tm.ResolveIdentity(token); ok {
		t.Fatal("expired token must resolve to absent")
	}
}

func TestResolveIdentityUnknownRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, _, err := tm.GenerateToken(&domain.Principal{ID: 1, Role: domain.Role("SUPERUSER")})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, ok := tm.ResolveIdentity(token); ok {
		t.Fatal("token with an unknown role must resolve to absent")
	}
}
