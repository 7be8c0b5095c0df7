package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys so no other package can
// read or shadow values this package stores in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// unauthorizedBody matches the uniform response envelope. It is written here
// as a literal to keep the middleware independent of the handler package.
const unauthorizedBody = `{"success":false,"message":"Authentication credentials were not provided."}`

// RequireAuth enforces authentication on protected routes.
//
// The JWT is read from the Authorization header ("Bearer <token>") or, as a
// fallback, from the "token" cookie. A valid token puts the user ID into the
// request context; anything else ends the request with a 401 envelope.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(unauthorizedBody))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ContextWithUserID returns a context carrying the given user ID. Exported
// for handler tests that bypass the middleware.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		raw := strings.TrimPrefix(h, "Bearer ")
		return tokens.Validate(strings.TrimSpace(raw))
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
