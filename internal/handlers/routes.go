package handlers

import (
	"net/http"

	"github.com/dvynshuu/fintrack/internal/storage"
)

// Routes registers every API route. Everything except health and the
// sign-in endpoints sits behind AuthMiddleware.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	protected := func(fn http.HandlerFunc) http.Handler {
		return h.AuthMiddleware(fn)
	}

	mux.HandleFunc("GET /api/health", h.Health)

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/google", h.Google)
	mux.Handle("GET /api/auth/me", protected(h.Me))

	for prefix, kind := range map[string]storage.EntryKind{
		"/api/expenses": storage.Expenses,
		"/api/incomes":  storage.Incomes,
	} {
		mux.Handle("GET "+prefix, protected(h.ListEntries(kind)))
		mux.Handle("POST "+prefix, protected(h.CreateEntry(kind)))
		mux.Handle("PUT "+prefix+"/{id}", protected(h.UpdateEntry(kind)))
		mux.Handle("DELETE "+prefix+"/{id}", protected(h.DeleteEntry(kind)))
		mux.Handle("GET "+prefix+"/summary", protected(h.CategorySummary(kind)))
		mux.Handle("GET "+prefix+"/monthly", protected(h.MonthlySummary(kind)))
	}

	mux.Handle("GET /api/goals", protected(h.ListGoals))
	mux.Handle("POST /api/goals", protected(h.CreateGoal))
	mux.Handle("PUT /api/goals/{id}", protected(h.UpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", protected(h.DeleteGoal))

	mux.Handle("GET /api/users/profile", protected(h.GetProfile))
	mux.Handle("PUT /api/users/profile", protected(h.UpdateProfile))
	mux.Handle("GET /api/users/settings", protected(h.GetSettings))
	mux.Handle("PUT /api/users/settings", protected(h.UpdateSettings))

	return mux
}
