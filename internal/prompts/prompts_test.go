package prompts

import (
	"slices"
	"testing"
)

func TestLookupKnownRole(t *testing.T) {
	p := Lookup("copywriter")
	if p == "" {
		t.Fatal("Expected non-empty prompt for known role")
	}
	if p == Lookup(DefaultRoleID) {
		t.Error("Expected role-specific prompt, got the default")
	}
}

func TestLookupUnknownRoleFallsBack(t *testing.T) {
	if got := Lookup("no-such-role"); got != Lookup(DefaultRoleID) {
		t.Error("Expected fallback to the default role prompt")
	}
}

func TestKnown(t *testing.T) {
	if !Known(DefaultRoleID) {
		t.Error("Expected default role to be known")
	}
	if Known("no-such-role") {
		t.Error("Expected unknown role to be reported as such")
	}
}

func TestRolesListsEveryPrompt(t *testing.T) {
	roles := Roles()
	if len(roles) != 8 {
		t.Errorf("Expected 8 roles, got %d", len(roles))
	}
	if !slices.Contains(roles, DefaultRoleID) {
		t.Errorf("Expected default role in %v", roles)
	}
	for _, id := range roles {
		if Lookup(id) == "" {
			t.Errorf("Expected non-empty prompt for %q", id)
		}
	}
}
