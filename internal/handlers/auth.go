package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dvynshuu/fintrack/internal/apperrors"
	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"
)

var errInvalidCredentials = apperrors.Authentication("Invalid credentials")

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Picture     string `json:"picture"`
	Token       string `json:"token"` // provider subject, cross-checked when present
	IDToken     string `json:"idToken"`
	AccessToken string `json:"accessToken"`
}

type authResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Register creates an account and signs it in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	fe := fieldErrors{}
	if req.Name == "" {
		fe.add("name", "name is required")
	}
	if req.Email == "" {
		fe.add("email", "email is required")
	} else if !validEmail(req.Email) {
		fe.add("email", "email is not a valid address")
	}
	if req.Password == "" {
		fe.add("password", "password is required")
	}
	if err := fe.err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if _, err := h.db.GetUserByEmail(ctx, req.Email); err == nil {
		h.writeError(w, r, apperrors.Conflict("User already exists"))
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, r, apperrors.Internal("Error creating user", err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error creating user", err))
		return
	}

	user, err := h.db.CreateUser(ctx, models.NewUser{Name: req.Name, Email: req.Email, PasswordHash: hash})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		h.writeError(w, r, apperrors.Conflict("User already exists"))
		return
	}
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error creating user", err))
		return
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	h.respondWithToken(w, r, http.StatusCreated, user, user.Public())
}

// Login exchanges an email and password for a session token. Unknown
// emails and wrong passwords produce the same response.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.writeError(w, r, apperrors.Validation("Email and password are required", nil))
		return
	}

	user, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		auth.DummyCheck(req.Password)
		h.writeError(w, r, errInvalidCredentials)
		return
	}
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error logging in", err))
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.writeError(w, r, errInvalidCredentials)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user, user.Public())
}

// Google signs in with a Google credential, creating the account on
// first use. The credential is verified with Google before any claim in
// the request is trusted.
func (h *Handlers) Google(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		h.writeError(w, r, apperrors.Unavailable("Google sign-in is not configured"))
		return
	}

	var req googleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.IDToken == "" && req.AccessToken == "" {
		h.writeError(w, r, apperrors.Validation("Missing required fields", map[string]string{
			"idToken": "idToken or accessToken is required",
		}))
		return
	}

	ctx := r.Context()
	identity, err := h.google.Verify(ctx, auth.GoogleCredential{IDToken: req.IDToken, AccessToken: req.AccessToken})
	if errors.Is(err, auth.ErrInvalidCredential) {
		slog.InfoContext(ctx, "google credential rejected", "error", err)
		h.writeError(w, r, apperrors.Authentication("Google authentication failed"))
		return
	}
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Google authentication failed", err))
		return
	}
	if (req.Email != "" && req.Email != identity.Email) || (req.Token != "" && req.Token != identity.Subject) {
		h.writeError(w, r, apperrors.Authentication("Google authentication failed"))
		return
	}

	user, err := h.findOrCreateFederated(ctx, identity, req)
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Google authentication failed", err))
		return
	}

	public := user.Public()
	public.ProfilePicture = user.ProfilePicture
	h.respondWithToken(w, r, http.StatusOK, user, public)
}

func (h *Handlers) findOrCreateFederated(ctx context.Context, id auth.GoogleIdentity, req googleRequest) (*models.User, error) {
	user, err := h.db.GetUserByEmail(ctx, id.Email)
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return user, err
	}

	hash, err := auth.RandomPasswordHash()
	if err != nil {
		return nil, err
	}
	name := firstNonEmpty(id.Name, strings.TrimSpace(req.Name), strings.SplitN(id.Email, "@", 2)[0])
	user, err = h.db.CreateUser(ctx, models.NewUser{
		Name:           name,
		Email:          id.Email,
		PasswordHash:   hash,
		ProfilePicture: firstNonEmpty(id.Picture, req.Picture),
	})
	if errors.Is(err, storage.ErrDuplicateEmail) {
		// Lost a race with a concurrent first sign-in.
		return h.db.GetUserByEmail(ctx, id.Email)
	}
	if err == nil {
		slog.InfoContext(ctx, "user created from google sign-in", "user_id", user.ID)
	}
	return user, err
}

// Me returns the authenticated user's identity.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	writeJSON(w, http.StatusOK, map[string]models.PublicUser{"user": user.Public()})
}

func (h *Handlers) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User, public models.PublicUser) {
	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.writeError(w, r, apperrors.Internal("Error issuing token", err))
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: public})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
