package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// ErrInvalidCredential means a federated credential could not be
// verified with the identity provider.
var ErrInvalidCredential = errors.New("invalid federated credential")

// GoogleCredential is what the client obtained from Google. IDToken is
// preferred when both are set.
type GoogleCredential struct {
	IDToken     string
	AccessToken string
}

// GoogleIdentity is the verified identity behind a credential.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleVerifier checks Google credentials server-side.
type GoogleVerifier struct {
	clientID     string
	userInfoURL  string
	tokenInfoURL string
	httpClient   *http.Client
	validate     func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// GoogleVerifierOption customizes a GoogleVerifier.
type GoogleVerifierOption func(*GoogleVerifier)

// WithEndpoints overrides the userinfo and tokeninfo URLs.
func WithEndpoints(userInfoURL, tokenInfoURL string) GoogleVerifierOption {
	return func(v *GoogleVerifier) {
		if userInfoURL != "" {
			v.userInfoURL = userInfoURL
		}
		if tokenInfoURL != "" {
			v.tokenInfoURL = tokenInfoURL
		}
	}
}

// WithHTTPClient sets the base client for access-token checks.
func WithHTTPClient(c *http.Client) GoogleVerifierOption {
	return func(v *GoogleVerifier) { v.httpClient = c }
}

// WithIDTokenValidator replaces idtoken.Validate.
func WithIDTokenValidator(fn func(ctx context.Context, token, audience string) (*idtoken.Payload, error)) GoogleVerifierOption {
	return func(v *GoogleVerifier) { v.validate = fn }
}

// NewGoogleVerifier creates a verifier accepting credentials issued to
// clientID.
func NewGoogleVerifier(clientID string, opts ...GoogleVerifierOption) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	v := &GoogleVerifier{
		clientID:     clientID,
		userInfoURL:  "https://openidconnect.googleapis.com/v1/userinfo",
		tokenInfoURL: "https://oauth2.googleapis.com/tokeninfo",
		httpClient:   http.DefaultClient,
		validate:     idtoken.Validate,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify resolves cred to a verified identity.
func (v *GoogleVerifier) Verify(ctx context.Context, cred GoogleCredential) (GoogleIdentity, error) {
	var (
		id  GoogleIdentity
		err error
	)
	switch {
	case cred.IDToken != "":
		id, err = v.verifyIDToken(ctx, cred.IDToken)
	case cred.AccessToken != "":
		id, err = v.verifyAccessToken(ctx, cred.AccessToken)
	default:
		return GoogleIdentity{}, fmt.Errorf("%w: no credential supplied", ErrInvalidCredential)
	}
	if err != nil {
		return GoogleIdentity{}, err
	}
	if id.Subject == "" || id.Email == "" {
		return GoogleIdentity{}, fmt.Errorf("%w: identity lacks subject or email", ErrInvalidCredential)
	}
	if !id.EmailVerified {
		return GoogleIdentity{}, fmt.Errorf("%w: email not verified", ErrInvalidCredential)
	}
	return id, nil
}

func (v *GoogleVerifier) verifyIDToken(ctx context.Context, token string) (GoogleIdentity, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return GoogleIdentity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	id := GoogleIdentity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	id.Picture, _ = payload.Claims["picture"].(string)
	switch ev := payload.Claims["email_verified"].(type) {
	case bool:
		id.EmailVerified = ev
	case string:
		id.EmailVerified = ev == "true"
	}
	return id, nil
}

// tokenInfo is Google's tokeninfo response; numbers and booleans arrive
// as strings.
type tokenInfo struct {
	Audience  string `json:"aud"`
	AuthParty string `json:"azp"`
	Subject   string `json:"sub"`
	ExpiresIn string `json:"expires_in"`
}

type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (v *GoogleVerifier) verifyAccessToken(ctx context.Context, token string) (GoogleIdentity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	var info tokenInfo
	infoURL := v.tokenInfoURL + "?" + url.Values{"access_token": {token}}.Encode()
	if err := getJSON(ctx, client, infoURL, &info); err != nil {
		return GoogleIdentity{}, err
	}
	if info.Audience != v.clientID && info.AuthParty != v.clientID {
		return GoogleIdentity{}, fmt.Errorf("%w: token issued to another client", ErrInvalidCredential)
	}
	if secs, err := strconv.Atoi(info.ExpiresIn); err != nil || secs <= 0 {
		return GoogleIdentity{}, fmt.Errorf("%w: token expired", ErrInvalidCredential)
	}

	var ui userInfo
	if err := getJSON(ctx, client, v.userInfoURL, &ui); err != nil {
		return GoogleIdentity{}, err
	}
	if info.Subject != "" && ui.Subject != info.Subject {
		return GoogleIdentity{}, fmt.Errorf("%w: subject mismatch", ErrInvalidCredential)
	}
	return GoogleIdentity{
		Subject:       ui.Subject,
		Email:         ui.Email,
		EmailVerified: ui.EmailVerified,
		Name:          ui.Name,
		Picture:       ui.Picture,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: google responded %d", ErrInvalidCredential, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode google response: %w", err)
	}
	return nil
}
