package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pratik-mahalle/mediremind/internal/auth"
	"github.com/pratik-mahalle/mediremind/internal/pkg/errors"
	"github.com/pratik-mahalle/mediremind/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// ClaimsKey is the context key for the verified token claims
	ClaimsKey ContextKey = "claims"
)

// TokenVerifier checks a bearer token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// bearerToken reads "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware returns a middleware that rejects requests without a valid token
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
				return
			}

			claims, err := verifier.Verify(r.Context(), tokenStr)
			if err != nil {
				utils.WriteError(w, errors.Unauthorized("Invalid or expired token"))
				return
			}

			// Add audit info to logs
			AddLogField(w, "user_id", claims.UserID)

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts the verified claims from the request context
func GetClaims(r *http.Request) (*auth.Claims, bool) {
	claims, ok := r.Context().Value(ClaimsKey).(*auth.Claims)
	return claims, ok
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	claims, ok := GetClaims(r)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}
