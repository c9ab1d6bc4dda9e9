//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"shelflife-api/internal/config"
	"shelflife-api/internal/database"
	"shelflife-api/internal/handler"
	"shelflife-api/internal/middleware"
	"shelflife-api/internal/repository"
	"shelflife-api/internal/router"
	"shelflife-api/internal/service"
)

// newIntegrationServer wires the full stack against a real Postgres. Set
// TEST_DATABASE_URL to run; the suite is skipped otherwise.
func newIntegrationServer(t *testing.T) (*httptest.Server, *service.AuthService) {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	db, err := database.Connect(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))

	// Each test run works with its own rows; truncate to keep runs
	// independent.
	_, err = db.Pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY`)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db.Pool)
	authService, err := service.NewAuthService("it-access-secret", "it-refresh-secret", time.Hour, 168*time.Hour, userRepo)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:              "development",
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"http://localhost:3000"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authHandler := handler.NewAuthHandler(authService, 168*time.Hour, false)

	server := httptest.NewServer(router.New(cfg, authMiddleware, authHandler))
	t.Cleanup(server.Close)

	return server, authService
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func registerUser(t *testing.T, serverURL string, username string, email string, password string) *http.Response {
	t.Helper()

	return postJSON(t, fmt.Sprintf("%s/api/auth/register", serverURL), map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
}

func refreshCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatal("refreshToken cookie not set")
	return nil
}
