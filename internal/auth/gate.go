package auth

import (
	"errors"
	"strings"
)

var (
	// ErrNotAuthenticated is returned when an operation requires an identity
	// and none was resolved from the request.
	ErrNotAuthenticated = errors.New("not authenticated, please log in")

	// ErrForbidden is returned when an identity was resolved but is not on
	// the admin allow-list.
	ErrForbidden = errors.New("restricted access")
)

// Identity is the result of validating inbound credentials with the external
// identity provider. Only the email claim is consulted anywhere.
type Identity struct {
	Email string
}

// Gate is the single authorization policy in the system: an allow-list of
// admin emails loaded from backend configuration. There are no roles and no
// per-resource permissions. The list is never exposed to clients.
type Gate struct {
	admins map[string]struct{}
}

// NewGate builds a gate from the configured admin emails. Comparison is
// case-insensitive on the email.
func NewGate(adminEmails []string) *Gate {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Gate{admins: admins}
}

// IsAdmin reports whether the identity passes the gate.
func (g *Gate) IsAdmin(identity *Identity) bool {
	if identity == nil {
		return false
	}
	_, ok := g.admins[strings.ToLower(identity.Email)]
	return ok
}

// RequireAdmin fails closed: a nil identity yields ErrNotAuthenticated and a
// non-admin identity yields ErrForbidden. Every privileged operation calls
// this before touching storage.
func (g *Gate) RequireAdmin(identity *Identity) error {
	if identity == nil {
		return ErrNotAuthenticated
	}
	if !g.IsAdmin(identity) {
		return ErrForbidden
	}
	return nil
}
