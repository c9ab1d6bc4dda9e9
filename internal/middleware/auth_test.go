package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"shelflife-api/internal/model"
)

type stubVerifier struct {
	user model.AuthUser
	err  error
}

func (s *stubVerifier) VerifyAccess(token string) (model.AuthUser, error) {
	if s.err != nil {
		return model.AuthUser{}, s.err
	}
	return s.user, nil
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestRequireAuthNoHeader(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&stubVerifier{})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	for _, tc := range []struct {
		name   string
		header string
	}{
		{"absent", ""},
		{"not bearer", "Basic abc123"},
		{"bearer without token", "Bearer "},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Not authorized, no token", decodeMessage(t, rec))
		})
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&stubVerifier{err: model.ErrTokenExpired})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer some.expired.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Token expired. Please log in again.", decodeMessage(t, rec))
}

func TestRequireAuthInvalidToken(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&stubVerifier{err: model.ErrTokenInvalid})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bad.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid token. Please log in again.", decodeMessage(t, rec))
}

func TestRequireAuthMissingSecretIsServerError(t *testing.T) {
	t.Parallel()

	// An operator error must never masquerade as a client 401.
	mw := NewAuthMiddleware(&stubVerifier{err: model.ErrMissingSecret})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuthWrappedMissingSecret(t *testing.T) {
	t.Parallel()

	wrapped := errors.Join(model.ErrMissingSecret)
	mw := NewAuthMiddleware(&stubVerifier{err: wrapped})
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireAuthAttachesIdentity(t *testing.T) {
	t.Parallel()

	mw := NewAuthMiddleware(&stubVerifier{user: model.AuthUser{ID: 42, Email: "alice@x.com"}})

	var got model.AuthUser
	var ok bool
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good.token.here")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	require.Equal(t, int64(42), got.ID)
	require.Equal(t, "alice@x.com", got.Email)
}

func TestUserFromContextAbsent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserFromContext(req.Context())
	require.False(t, ok)
}
