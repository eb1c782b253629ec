package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/storage"
)

var errUnauthenticated = apperrors.Authentication("Please authenticate")

// AuthMiddleware wraps handlers to require a valid bearer token whose
// user still exists. The resolved user is stored in the request context.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			h.writeError(w, r, errUnauthenticated)
			return
		}

		userID, err := h.tokens.Verify(token)
		if err != nil {
			slog.DebugContext(r.Context(), "rejected token", "error", err)
			h.writeError(w, r, errUnauthenticated)
			return
		}

		user, err := h.db.GetUserByID(r.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, r, errUnauthenticated)
			return
		}
		if err != nil {
			h.writeError(w, r, apperrors.Internal("Internal server error", err))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests logs one line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.InfoContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
