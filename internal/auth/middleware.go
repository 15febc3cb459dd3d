package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is the authenticated caller, as decoded from the access token.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// contextKey is unexported so only this package can read or write the
// identity value — no other package can collide with or shadow it.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces authentication on protected routes.
//
// The token is read from the Authorization header ("Bearer <jwt>"), falling
// back to the "token" HttpOnly cookie for browser sessions started through
// the OAuth flow. Missing or invalid token → 401, request chain stops.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := extractIdentity(r, tokens)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized,
					`{"message":"not authorised, valid token required","error":"unauthorized"}`)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin stops non-admin callers with 403. Must be mounted inside
// RequireAuth — it trusts the identity already placed in the context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := IdentityFromContext(r.Context())
		if !ok || !ident.IsAdmin {
			writeAuthError(w, http.StatusForbidden,
				`{"message":"admin access required","error":"forbidden"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext retrieves the authenticated caller.
// Returns (zero, false) on routes not behind RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(identityKey).(Identity)
	return ident, ok && ident.UserID != ""
}

// writeAuthError emits the same JSON envelope the handlers use, without
// importing them (that would be a dependency cycle).
func writeAuthError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func extractIdentity(r *http.Request, tokens *TokenService) (Identity, error) {
	tokenStr := ""

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenStr = strings.TrimPrefix(h, "Bearer ")
	} else if cookie, err := r.Cookie("token"); err == nil {
		tokenStr = cookie.Value
	}

	if tokenStr == "" {
		return Identity{}, http.ErrNoCookie
	}

	userID, isAdmin, err := tokens.Validate(tokenStr)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: userID, IsAdmin: isAdmin}, nil
}
