// Package authmw provides HTTP middleware for bearer token authentication
// and caller identity resolution.
package authmw

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	// OrgID scopes tenant-visible data. Empty means no tenant scoping
	// was requested.
	OrgID string
	// UserID is recorded as the actor on lifecycle transitions.
	UserID string
}

type ctxKey struct{}

// BearerToken returns middleware that validates the Authorization header
// contains a Bearer token matching the expected value, then records the
// caller identity from the X-Org-ID and X-User-ID headers. Comparison uses
// constant-time equality to prevent timing side-channel attacks.
func BearerToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, `{"error":"missing or malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			got := []byte(auth[len("Bearer "):])

			if subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			id := Identity{
				OrgID:  r.Header.Get("X-Org-ID"),
				UserID: r.Header.Get("X-User-ID"),
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity attaches a caller identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller identity, or the zero Identity when the
// request did not pass through the middleware.
func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}
