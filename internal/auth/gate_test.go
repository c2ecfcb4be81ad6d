package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRequireAdmin_NilIdentity(t *testing.T) {
	gate := NewGate([]string{"admin@nautia.pt"})

	err := gate.RequireAdmin(nil)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated for nil identity, got %v", err)
	}
}

func TestRequireAdmin_NonAdminIdentity(t *testing.T) {
	gate := NewGate([]string{"admin@nautia.pt"})

	err := gate.RequireAdmin(&Identity{Email: "visitor@example.com"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-admin identity, got %v", err)
	}
}

func TestRequireAdmin_AdminIdentity(t *testing.T) {
	gate := NewGate([]string{"admin@nautia.pt", "ops@nautia.pt"})

	if err := gate.RequireAdmin(&Identity{Email: "ops@nautia.pt"}); err != nil {
		t.Errorf("expected admin identity to pass, got %v", err)
	}
}

func TestRequireAdmin_CaseInsensitive(t *testing.T) {
	gate := NewGate([]string{"Admin@Nautia.pt"})

	if err := gate.RequireAdmin(&Identity{Email: "admin@nautia.pt"}); err != nil {
		t.Errorf("expected case-insensitive match to pass, got %v", err)
	}
	if err := gate.RequireAdmin(&Identity{Email: "ADMIN@NAUTIA.PT"}); err != nil {
		t.Errorf("expected uppercase match to pass, got %v", err)
	}
}

func TestRequireAdmin_EmptyAllowList(t *testing.T) {
	gate := NewGate(nil)

	err := gate.RequireAdmin(&Identity{Email: "anyone@example.com"})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected empty allow-list to reject everyone, got %v", err)
	}
}

func TestProperty_GateDecisionIsTotal(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every identity yields exactly one of pass, forbidden, unauthenticated", prop.ForAll(
		func(allowed string, email string, anonymous bool) bool {
			gate := NewGate([]string{allowed})

			var identity *Identity
			if !anonymous {
				identity = &Identity{Email: email}
			}

			err := gate.RequireAdmin(identity)
			switch {
			case anonymous:
				return errors.Is(err, ErrNotAuthenticated)
			case strings.EqualFold(email, allowed):
				return err == nil
			default:
				return errors.Is(err, ErrForbidden)
			}
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|pt|org)`),
		gen.RegexMatch(`[a-zA-Z]{3,10}@[a-z]{3,8}\.(com|pt|org)`),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
