package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

var (
	errUserNotFound = apperrors.NotFound("User not found")
	errEmailTaken   = apperrors.Conflict("Email already in use")
)

type profileInput struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Location      *string `json:"location"`
	Currency      *string `json:"currency"`
	Language      *string `json:"language"`
	Notifications *bool   `json:"notifications"`
}

func (in profileInput) validate() (models.ProfileUpdate, error) {
	fe := fieldErrors{}
	upd := models.ProfileUpdate{
		Name:          requireText(fe, "name", in.Name, false),
		Email:         requireText(fe, "email", in.Email, false),
		Phone:         trimmed(in.Phone),
		Location:      trimmed(in.Location),
		Currency:      requireText(fe, "currency", in.Currency, false),
		Language:      requireText(fe, "language", in.Language, false),
		Notifications: in.Notifications,
	}
	if upd.Email != nil && !validEmail(*upd.Email) {
		fe.add("email", "email is not a valid address")
	}
	return upd, fe.err()
}

// trimmed trims an optional field that may be cleared.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

// GetProfile returns the caller's profile without the password hash.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetUserFromContext(r))
}

// UpdateProfile changes the caller's profile. A new email must not
// belong to another account.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in profileInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	upd, err := in.validate()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	user := GetUserFromContext(r)
	if upd.Email != nil && *upd.Email != user.Email {
		if _, err := h.db.GetUserByEmail(ctx, *upd.Email); err == nil {
			h.writeError(w, r, errEmailTaken)
			return
		} else if !errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, r, apperrors.Internal("Error updating profile", err))
			return
		}
	}

	updated, err := h.db.UpdateProfile(ctx, user.ID, upd)
	switch {
	case errors.Is(err, storage.ErrDuplicateEmail):
		h.writeError(w, r, errEmailTaken)
	case errors.Is(err, storage.ErrNotFound):
		h.writeError(w, r, errUserNotFound)
	case err != nil:
		h.writeError(w, r, apperrors.Internal("Error updating profile", err))
	default:
		writeJSON(w, http.StatusOK, updated)
	}
}

// GetSettings returns the caller's preferences.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	settings, err := h.db.GetSettings(r.Context(), user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, errUserNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error fetching settings", err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings replaces the caller's preferences. Omitted leaves take
// their default values.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings := models.DefaultSettings()
	if err := decodeJSON(w, r, &settings); err != nil {
		h.writeError(w, r, err)
		return
	}

	user := GetUserFromContext(r)
	saved, err := h.db.ReplaceSettings(r.Context(), user.ID, settings)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, errUserNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error updating settings", err))
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
