package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "auth-claims"

// WithClaims stores session claims in a context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFrom retrieves session claims from a context.
// Returns nil if the request was not authenticated.
func ClaimsFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// RequireAuth is a middleware that validates the Authorization bearer token
// and stores the session claims in the request context. Requests without a
// valid token get 401. Error bodies are written by the onError callback so
// the API package controls the response shape.
func (s *Service) RequireAuth(onError func(w http.ResponseWriter, status int, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				onError(w, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				onError(w, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			claims, err := s.ValidateToken(token)
			if err != nil {
				onError(w, http.StatusUnauthorized, ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin is a middleware that rejects non-admin sessions with 403.
// It must run after RequireAuth.
func RequireAdmin(onError func(w http.ResponseWriter, status int, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFrom(r.Context())
			if claims == nil {
				onError(w, http.StatusUnauthorized, ErrMissingToken)
				return
			}
			if claims.Role != "admin" {
				onError(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
