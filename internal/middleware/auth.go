package middleware

import (
	"context"
	"net/http"
	"strings"

	"islebook-backend/internal/auth"
	"islebook-backend/internal/transport"
)

type identityKey struct{}

// Identity is the authenticated caller as seen by handlers. Email doubles as
// the customer key for appointments and favorites.
type Identity struct {
	Email string
	Name  string
}

const AccessCookie = "islebook_access"

// RequireAuth is the session gate: every guarded screen of the mobile client
// maps to a route behind this middleware. Unauthenticated calls get a 401
// and the client redirects to its sign-in screen.
func RequireAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
				return
			}

			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(AccessCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "unauthenticated", nil)
				return
			}

			identity := Identity{Email: claims.Email, Name: claims.Name}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey{}).(Identity)
	return v, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
