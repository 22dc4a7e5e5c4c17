package identity

import (
	"testing"

	"github.com/keygate/keygate/internal/types"
)

func TestNewSet_RequiresSharedKey(t *testing.T) {
	if _, err := NewSet("", ""); err == nil {
		t.Fatal("expected error for empty shared key")
	}
}

func TestResolve_NoAuthSendsNothing(t *testing.T) {
	s, err := NewSet("anon-key", "")
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	c := s.Resolve(types.TierNoAuth)
	if !c.Available {
		t.Fatal("no_auth must always be available")
	}
	if len(c.Headers) != 0 {
		t.Fatalf("no_auth must send no credential headers, got %v", c.Headers)
	}
}

func TestResolve_SharedKeyHeaders(t *testing.T) {
	s, _ := NewSet("anon-key", "")
	c := s.Resolve(types.TierSharedKey)
	if c.Headers["apikey"] != "anon-key" {
		t.Fatalf("apikey header = %q", c.Headers["apikey"])
	}
	if c.Headers["Authorization"] != "Bearer anon-key" {
		t.Fatalf("Authorization header = %q", c.Headers["Authorization"])
	}
}

func TestResolve_UserTokenAbsent(t *testing.T) {
	s, _ := NewSet("anon-key", "")
	c := s.Resolve(types.TierUserToken)
	if c.Available {
		t.Fatal("user token absent, context must be unavailable")
	}
	if len(c.Headers) != 0 {
		t.Fatal("unavailable context must not carry headers (no tier substitution)")
	}
}

func TestResolve_UserTokenPresent(t *testing.T) {
	s, _ := NewSet("anon-key", "user-jwt")
	c := s.Resolve(types.TierUserToken)
	if !c.Available {
		t.Fatal("user token supplied, context must be available")
	}
	if c.Headers["Authorization"] != "Bearer user-jwt" {
		t.Fatalf("Authorization header = %q", c.Headers["Authorization"])
	}
	if c.Headers["apikey"] != "anon-key" {
		t.Fatal("user tier still sends the shared apikey header")
	}
}
