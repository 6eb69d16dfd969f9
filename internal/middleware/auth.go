package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/neighborhood-app/backend/internal/apperr"
	"github.com/neighborhood-app/backend/internal/auth"
	"github.com/neighborhood-app/backend/internal/httpx"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller attached to the request context by
// Authenticate.
type Identity struct {
	Username string
	TokenID  string
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// IdentityFrom returns the authenticated identity, or nil for anonymous
// requests.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// WithIdentity returns a context carrying the given identity. Handler tests
// use it to simulate an authenticated request.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Authenticate verifies a Bearer token, if one is present, and attaches the
// resulting identity to the request context. Requests without a valid token
// proceed anonymously; rejecting them is the guard's job.
func Authenticate(issuer *auth.TokenIssuer, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Verify(tokenString)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID); err != nil || isRevoked {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), &Identity{
				Username: claims.Username,
				TokenID:  claims.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnsureCorrectUser permits the request only when the authenticated identity
// matches the {username} path parameter exactly. Anonymous requests and
// mismatches are rejected alike; there is no admin override.
func EnsureCorrectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := IdentityFrom(r.Context())
		if id == nil || id.Username != chi.URLParam(r, "username") {
			httpx.WriteError(w, apperr.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
