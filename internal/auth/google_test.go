package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

const testClientID = "client-123.apps.googleusercontent.com"

func TestNewGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier("")
	assert.Error(t, err)
}

func TestVerify_NoCredential(t *testing.T) {
	v, err := NewGoogleVerifier(testClientID)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), GoogleCredential{})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_IDToken(t *testing.T) {
	var gotAudience string
	validator := func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		if token != "good-id-token" {
			return nil, errors.New("idtoken: invalid signature")
		}
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims: map[string]any{
				"email":          "alice@example.com",
				"email_verified": true,
				"name":           "Alice",
				"picture":        "https://example.com/a.png",
			},
		}, nil
	}
	v, err := NewGoogleVerifier(testClientID, WithIDTokenValidator(validator))
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), GoogleCredential{IDToken: "good-id-token", AccessToken: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, testClientID, gotAudience)
	assert.Equal(t, GoogleIdentity{
		Subject:       "google-sub-1",
		Email:         "alice@example.com",
		EmailVerified: true,
		Name:          "Alice",
		Picture:       "https://example.com/a.png",
	}, id)

	_, err = v.Verify(context.Background(), GoogleCredential{IDToken: "forged"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_IDTokenUnverifiedEmail(t *testing.T) {
	validator := func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Subject: "google-sub-1",
			Claims:  map[string]any{"email": "alice@example.com", "email_verified": "false"},
		}, nil
	}
	v, err := NewGoogleVerifier(testClientID, WithIDTokenValidator(validator))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), GoogleCredential{IDToken: "t"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

// fakeGoogle serves tokeninfo and userinfo for a single access token.
func fakeGoogle(t *testing.T, audience, expiresIn string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "good-access-token" {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"aud":        audience,
			"azp":        audience,
			"sub":        "google-sub-1",
			"expires_in": expiresIn,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":            "google-sub-1",
			"email":          "alice@example.com",
			"email_verified": true,
			"name":           "Alice",
			"picture":        "https://example.com/a.png",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAccessTokenVerifier(t *testing.T, srv *httptest.Server) *GoogleVerifier {
	t.Helper()
	v, err := NewGoogleVerifier(testClientID,
		WithEndpoints(srv.URL+"/userinfo", srv.URL+"/tokeninfo"),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return v
}

func TestVerify_AccessToken(t *testing.T) {
	v := newAccessTokenVerifier(t, fakeGoogle(t, testClientID, "3599"))

	id, err := v.Verify(context.Background(), GoogleCredential{AccessToken: "good-access-token"})
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", id.Subject)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, "https://example.com/a.png", id.Picture)
}

func TestVerify_AccessTokenRejected(t *testing.T) {
	tests := []struct {
		name      string
		audience  string
		expiresIn string
		token     string
	}{
		{"unknown token", testClientID, "3599", "bad-access-token"},
		{"other client", "someone-else.apps.googleusercontent.com", "3599", "good-access-token"},
		{"expired", testClientID, "0", "good-access-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newAccessTokenVerifier(t, fakeGoogle(t, tt.audience, tt.expiresIn))

			_, err := v.Verify(context.Background(), GoogleCredential{AccessToken: tt.token})
			assert.ErrorIs(t, err, ErrInvalidCredential)
		})
	}
}
