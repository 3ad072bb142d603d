package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/drughub-api/internal/application/auth"
	"github.com/drughub-api/internal/domain"
)

type contextKey string

const IdentityKey contextKey = "identity"

// Auth returns middleware that resolves the Bearer credential through the
// authentication orchestrator and injects the identity into the request
// context. Session tokens and signed access tokens are both accepted.
func Auth(svc auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			bearer := strings.TrimPrefix(authHeader, "Bearer ")

			identity, err := svc.AuthenticateRequest(r.Context(), bearer)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrForbidden):
					writeJSONError(w, http.StatusForbidden, "account is not allowed to sign in")
				case errors.Is(err, domain.ErrStoreUnavailable):
					writeJSONError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
				default:
					writeJSONError(w, http.StatusUnauthorized, "invalid or expired credential")
				}
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext extracts the authenticated identity from the request context.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	i, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return i, ok
}

// BearerFromRequest returns the raw bearer credential, if any.
func BearerFromRequest(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
