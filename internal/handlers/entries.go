package handlers

import (
	"errors"
	"net/http"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

// entryInput is the allow-list of client-settable entry fields. An
// owner or id in the body is never read.
type entryInput struct {
	Title    *string  `json:"title"`
	Amount   *float64 `json:"amount"`
	Category *string  `json:"category"`
	Date     *string  `json:"date"`
	Notes    *string  `json:"notes"`
}

func (in entryInput) validate(create bool) (models.EntryFields, error) {
	fe := fieldErrors{}
	f := models.EntryFields{
		Title:    requireText(fe, "title", in.Title, create),
		Category: requireText(fe, "category", in.Category, create),
		Date:     optionalDate(fe, "date", in.Date, create),
		Notes:    in.Notes,
	}
	switch {
	case in.Amount == nil && create:
		fe.add("amount", "amount is required")
	case in.Amount != nil && *in.Amount <= 0:
		fe.add("amount", "amount must be positive")
	default:
		f.Amount = in.Amount
	}
	return f, fe.err()
}

func entryNotFound(kind storage.EntryKind) error {
	return apperrors.NotFound(kind.Name() + " not found")
}

// ListEntries returns the caller's entries of one kind, newest first.
func (h *Handlers) ListEntries(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		entries, err := h.db.ListEntries(r.Context(), kind, user.ID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// CreateEntry stores a new entry owned by the caller.
func (h *Handlers) CreateEntry(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in entryInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
		f, err := in.validate(true)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		e := models.Entry{Title: *f.Title, Amount: *f.Amount, Category: *f.Category, Date: *f.Date}
		if f.Notes != nil {
			e.Notes = *f.Notes
		}
		user := GetUserFromContext(r)
		created, err := h.db.CreateEntry(r.Context(), kind, user.ID, e)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// UpdateEntry changes an entry the caller owns.
func (h *Handlers) UpdateEntry(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in entryInput
		if err := decodeJSON(w, r, &in); err != nil {
			h.writeError(w, r, err)
			return
		}
		f, err := in.validate(false)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		user := GetUserFromContext(r)
		updated, err := h.db.UpdateEntry(r.Context(), kind, user.ID, r.PathValue("id"), f)
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, r, entryNotFound(kind))
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteEntry removes an entry the caller owns.
func (h *Handlers) DeleteEntry(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		err := h.db.DeleteEntry(r.Context(), kind, user.ID, r.PathValue("id"))
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, r, entryNotFound(kind))
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageBody{Message: kind.Name() + " deleted successfully"})
	}
}

// CategorySummary returns the caller's totals per category.
func (h *Handlers) CategorySummary(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		totals, err := h.db.CategoryTotals(r.Context(), kind, user.ID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}

// MonthlySummary returns the caller's totals per calendar month.
func (h *Handlers) MonthlySummary(kind storage.EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		totals, err := h.db.MonthlyTotals(r.Context(), kind, user.ID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, totals)
	}
}
