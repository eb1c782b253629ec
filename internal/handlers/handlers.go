package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// maxBodyBytes caps JSON request bodies.
	maxBodyBytes = 1 << 20
)

// IdentityVerifier resolves a federated credential to a verified
// identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, cred auth.GoogleCredential) (auth.GoogleIdentity, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db         *storage.DB
	tokens     *auth.TokenService
	google     IdentityVerifier
	production bool
}

// NewHandlers creates a new Handlers instance. A nil google verifier
// disables federated sign-in.
func NewHandlers(db *storage.DB, tokens *auth.TokenService, google IdentityVerifier, production bool) *Handlers {
	return &Handlers{db: db, tokens: tokens, google: google, production: production}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// Health reports whether the store is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		slog.ErrorContext(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Message: "Database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError renders err as the error envelope. Internal errors are
// logged with their cause and shown to the caller generically.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)

	body := errorBody{Message: appErr.Message}
	if appErr.Kind == apperrors.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		if body.Message == "" {
			body.Message = "Internal server error"
		}
		if !h.production && appErr.Cause != nil {
			body.Details = appErr.Cause.Error()
		}
	} else if !h.production {
		body.Details = appErr.Details
	}
	writeJSON(w, appErr.Kind.HTTPStatus(), body)
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are ignored; only the fields dst declares are read.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required", nil)
		}
		return apperrors.Validation("Invalid request body", err.Error())
	}
	return nil
}

// fieldErrors collects per-field validation messages.
type fieldErrors map[string]string

func (fe fieldErrors) add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", map[string]string(fe))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDate accepts calendar dates, HTML datetime-local values and
// RFC 3339 timestamps. Values without a zone are taken as UTC. The UTC
// year must stay within 1..9999, the range the store can write back.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		t = t.UTC()
		if y := t.Year(); y < 1 || y > 9999 {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// requireText validates an optional text field. On create the field
// must be present; when present it must not be blank.
func requireText(fe fieldErrors, field string, v *string, create bool) *string {
	if v == nil {
		if create {
			fe.add(field, field+" is required")
		}
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		fe.add(field, field+" must not be empty")
		return nil
	}
	return &trimmed
}

func optionalDate(fe fieldErrors, field string, v *string, create bool) *time.Time {
	if v == nil {
		if create {
			fe.add(field, field+" is required")
		}
		return nil
	}
	t, ok := parseDate(*v)
	if !ok {
		fe.add(field, field+" must be a date (YYYY-MM-DD or RFC 3339)")
		return nil
	}
	return &t
}
