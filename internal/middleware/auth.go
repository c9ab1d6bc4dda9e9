package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"shelflife-api/internal/model"
)

type accessVerifier interface {
	VerifyAccess(tokenString string) (model.AuthUser, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

type AuthMiddleware struct {
	verifier accessVerifier
}

func NewAuthMiddleware(verifier accessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth gates a protected route. Client-side token problems are 401s
// with stable messages; a missing server secret is a 500 so an operator error
// is never reported as a bad client token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		user, err := m.verifier.VerifyAccess(token)
		if err != nil {
			switch {
			case errors.Is(err, model.ErrMissingSecret):
				writeAuthError(w, http.StatusInternalServerError, "Server misconfiguration: JWT secret missing")
			case errors.Is(err, model.ErrTokenExpired):
				writeAuthError(w, http.StatusUnauthorized, "Token expired. Please log in again.")
			default:
				writeAuthError(w, http.StatusUnauthorized, "Invalid token. Please log in again.")
			}
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the identity attached by RequireAuth.
func UserFromContext(ctx context.Context) (model.AuthUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(model.AuthUser)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = jsonEncode(w, model.ErrorResponse{Message: message})
}
