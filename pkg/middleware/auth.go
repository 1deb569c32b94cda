package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKeyType string

const principalKey contextKeyType = "principal"

// Principal is the authenticated identity extracted from a bearer access
// token and threaded through the request context.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenValidator validates an access token string and returns the principal
// it identifies. Validation failures for expired tokens must wrap
// jwt.ErrTokenExpired so the middleware can distinguish them.
type TokenValidator func(token string) (*Principal, error)

// Authenticate validates the Authorization bearer token and injects the
// principal into the request context. Responses follow the service error
// envelope with codes NO_TOKEN, EXPIRED_TOKEN, and INVALID_TOKEN.
func Authenticate(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "NO_TOKEN", "no token provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeAuthError(w, "NO_TOKEN", "invalid authorization header format")
				return
			}

			principal, err := validate(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					writeAuthError(w, "EXPIRED_TOKEN", "token expired")
					return
				}
				writeAuthError(w, "INVALID_TOKEN", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the authenticated principal from the request
// context. Returns nil if the request did not pass through Authenticate.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey).(*Principal); ok {
		return p
	}
	return nil
}

// ContextWithPrincipal returns a context carrying the given principal.
// Intended for tests that exercise handlers without the full middleware chain.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
		"error":   code,
	})
}
