package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/config"
	"github.com/dvynshuu/fintrack/internal/handlers"
	"github.com/dvynshuu/fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T) (*handlers.Handlers, *storage.DB) {
	t.Helper()
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService([]byte(strings.Repeat("k", auth.MinSecretLength)), auth.TokenTTL)
	require.NoError(t, err)
	return handlers.NewHandlers(db, tokens, nil, false), db
}

func TestSetupRouter(t *testing.T) {
	h, _ := newTestHandlers(t)

	// Registering conflicting patterns panics here.
	mux := setupRouter(h)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "Health is public", method: "GET", path: "/api/health", wantStatus: http.StatusOK},
		{name: "Me requires auth", method: "GET", path: "/api/auth/me", wantStatus: http.StatusUnauthorized},
		{name: "Expenses require auth", method: "GET", path: "/api/expenses", wantStatus: http.StatusUnauthorized},
		{name: "Income summary requires auth", method: "GET", path: "/api/incomes/summary", wantStatus: http.StatusUnauthorized},
		{name: "Goals require auth", method: "POST", path: "/api/goals", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "Settings require auth", method: "PUT", path: "/api/users/settings", body: `{}`, wantStatus: http.StatusUnauthorized},
		{name: "Login validates body", method: "POST", path: "/api/auth/login", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "Google disabled without client id", method: "POST", path: "/api/auth/google", body: `{}`, wantStatus: http.StatusServiceUnavailable},
		{name: "Unknown route", method: "GET", path: "/api/unknown", wantStatus: http.StatusNotFound},
		{name: "Wrong method", method: "PATCH", path: "/api/goals", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "%s %s returned unexpected status", tt.method, tt.path)
		})
	}
}

func TestBootstrapUser(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without credentials", func(t *testing.T) {
		_, db := newTestHandlers(t)
		require.NoError(t, bootstrapUser(ctx, db, config.Bootstrap{Email: "admin@example.com"}))

		count, err := db.UserCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("seeds empty store", func(t *testing.T) {
		_, db := newTestHandlers(t)
		b := config.Bootstrap{Email: "admin@example.com", Password: "changeme", Name: "Admin"}
		require.NoError(t, bootstrapUser(ctx, db, b))

		user, err := db.GetUserByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Admin", user.Name)
		assert.True(t, auth.CheckPassword("changeme", user.PasswordHash))
	})

	t.Run("skips populated store", func(t *testing.T) {
		_, db := newTestHandlers(t)
		b := config.Bootstrap{Email: "admin@example.com", Password: "changeme", Name: "Admin"}
		require.NoError(t, bootstrapUser(ctx, db, b))
		require.NoError(t, bootstrapUser(ctx, db, config.Bootstrap{Email: "other@example.com", Password: "x", Name: "Other"}))

		count, err := db.UserCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
