package middleware

import (
	"errors"
	"net/http"

	"nautia-api/internal/auth"

	"go.uber.org/zap"
)

// RequireAdmin is the single authorization wrapper for every privileged
// route. It fails closed: no identity yields 401, a resolved identity that
// is not on the allow-list yields 403. No route implements its own check.
func RequireAdmin(gate *auth.Gate, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())

			if err := gate.RequireAdmin(identity); err != nil {
				if errors.Is(err, auth.ErrNotAuthenticated) {
					logger.Debug("Unauthenticated request to admin endpoint",
						zap.String("path", r.URL.Path),
					)
					respondWithError(w, http.StatusUnauthorized, err.Error())
					return
				}

				logger.Warn("Non-admin identity attempted admin endpoint",
					zap.String("email", identity.Email),
					zap.String("path", r.URL.Path),
				)
				respondWithError(w, http.StatusForbidden, err.Error())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
