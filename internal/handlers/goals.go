package handlers

import (
	"errors"
	"net/http"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

var errGoalNotFound = apperrors.NotFound("Goal not found")

type goalInput struct {
	Title         *string            `json:"title"`
	Type          *string            `json:"type"`
	TargetAmount  *float64           `json:"targetAmount"`
	CurrentAmount *float64           `json:"currentAmount"`
	TargetDate    *string            `json:"targetDate"`
	Status        *models.GoalStatus `json:"status"`
	Notes         *string            `json:"notes"`
}

func (in goalInput) validate(create bool) (models.GoalFields, error) {
	fe := fieldErrors{}
	f := models.GoalFields{
		Title:      requireText(fe, "title", in.Title, create),
		Type:       requireText(fe, "type", in.Type, create),
		TargetDate: optionalDate(fe, "targetDate", in.TargetDate, create),
		Notes:      in.Notes,
	}

	switch {
	case in.TargetAmount == nil && create:
		fe.add("targetAmount", "targetAmount is required")
	case in.TargetAmount != nil && *in.TargetAmount <= 0:
		fe.add("targetAmount", "targetAmount must be positive")
	default:
		f.TargetAmount = in.TargetAmount
	}

	switch {
	case in.CurrentAmount == nil && create:
		zero := 0.0
		f.CurrentAmount = &zero
	case in.CurrentAmount != nil && *in.CurrentAmount < 0:
		fe.add("currentAmount", "currentAmount must not be negative")
	default:
		f.CurrentAmount = in.CurrentAmount
	}

	switch {
	case (in.Status == nil || *in.Status == "") && create:
		s := models.GoalNotStarted
		f.Status = &s
	case in.Status != nil && !in.Status.Valid():
		fe.add("status", "status must be one of Not Started, In Progress, Completed")
	default:
		f.Status = in.Status
	}

	return f, fe.err()
}

// ListGoals returns the caller's goals.
func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	goals, err := h.db.ListGoals(r.Context(), user.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// CreateGoal stores a new goal owned by the caller.
func (h *Handlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var in goalInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := in.validate(true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	g := models.Goal{
		Title:         *f.Title,
		Type:          *f.Type,
		TargetAmount:  *f.TargetAmount,
		CurrentAmount: *f.CurrentAmount,
		TargetDate:    *f.TargetDate,
		Status:        *f.Status,
	}
	if f.Notes != nil {
		g.Notes = *f.Notes
	}
	user := GetUserFromContext(r)
	created, err := h.db.CreateGoal(r.Context(), user.ID, g)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateGoal changes a goal the caller owns.
func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var in goalInput
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
	updated, err := h.db.UpdateGoal(r.Context(), user.ID, r.PathValue("id"), f)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, errGoalNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteGoal removes a goal the caller owns.
func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	err := h.db.DeleteGoal(r.Context(), user.ID, r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, errGoalNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Goal deleted successfully"})
}
