package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func identityProbe(captured **string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity := GetIdentity(r.Context()); identity != nil {
			email := identity.Email
			*captured = &email
		}
		w.WriteHeader(http.StatusOK)
	})
}

// The identity resolver never rejects on its own. Anonymous, malformed and
// invalid credentials all reach the handler, just without an identity.
func TestProperty_IdentityResolverNeverRejects(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests pass through regardless of credentials", prop.ForAll(
		func(header string, method string) bool {
			logger, _ := zap.NewDevelopment()
			middleware := WithIdentity("test-secret", logger)

			var captured *string
			handler := middleware(identityProbe(&captured))

			req := httptest.NewRequest(method, "/api/products", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			// Garbage credentials resolve to anonymous, never to an error
			return w.Code == http.StatusOK && captured == nil
		},
		gen.OneConstOf("", "Bearer", "Bearer not-a-jwt", "Basic dXNlcjpwYXNz", "garbage header value"),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestWithIdentity_ValidTokenResolvesEmail(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := WithIdentity("test-secret", logger)

	var captured *string
	handler := middleware(identityProbe(&captured))

	token := signToken(t, "test-secret", jwt.MapClaims{
		"email": "admin@nautia.pt",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured == nil || *captured != "admin@nautia.pt" {
		t.Errorf("expected resolved email admin@nautia.pt, got %v", captured)
	}
}

func TestWithIdentity_ExpiredTokenIsAnonymous(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := WithIdentity("test-secret", logger)

	var captured *string
	handler := middleware(identityProbe(&captured))

	token := signToken(t, "test-secret", jwt.MapClaims{
		"email": "admin@nautia.pt",
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured != nil {
		t.Errorf("expected expired token to resolve as anonymous, got identity %q", *captured)
	}
}

func TestWithIdentity_WrongSecretIsAnonymous(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := WithIdentity("test-secret", logger)

	var captured *string
	handler := middleware(identityProbe(&captured))

	token := signToken(t, "other-secret", jwt.MapClaims{
		"email": "admin@nautia.pt",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if captured != nil {
		t.Errorf("expected forged token to resolve as anonymous, got identity %q", *captured)
	}
}

func TestWithIdentity_MissingEmailClaimIsAnonymous(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	middleware := WithIdentity("test-secret", logger)

	var captured *string
	handler := middleware(identityProbe(&captured))

	token := signToken(t, "test-secret", jwt.MapClaims{
		"sub": "some-user-id",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest("GET", "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if captured != nil {
		t.Errorf("expected token without email claim to resolve as anonymous, got %q", *captured)
	}
}
