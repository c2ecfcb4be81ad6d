package middleware

import (
	"context"
	"net/http"
	"strings"

	"nautia-api/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity resolves the caller's identity from a Bearer token issued by
// the external identity provider. It never rejects a request on its own:
// missing or malformed credentials leave the request unauthenticated and the
// admin gate downstream decides whether that matters. Public endpoints run
// behind this same middleware so handlers have one way to ask "who is this".
func WithIdentity(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolveIdentity(r, jwtSecret, logger)
			if identity != nil {
				ctx := context.WithValue(r.Context(), identityKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveIdentity(r *http.Request, jwtSecret string, logger *zap.Logger) *auth.Identity {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		logger.Debug("Malformed authorization header, treating as anonymous")
		return nil
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		// Invalid credentials are equivalent to no credentials; the gate
		// rejects later if the route needs an identity.
		logger.Debug("Token validation failed, treating as anonymous", zap.Error(err))
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		logger.Debug("Token missing email claim, treating as anonymous")
		return nil
	}

	return &auth.Identity{Email: email}
}

// GetIdentity extracts the resolved identity from the request context.
// Returns nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *auth.Identity {
	identity, _ := ctx.Value(identityKey).(*auth.Identity)
	return identity
}
