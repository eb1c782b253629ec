package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSecret  = []byte(strings.Repeat("s", MinSecretLength))
	otherSecret = []byte(strings.Repeat("o", MinSecretLength))
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash, "hash must not be the plaintext")
	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))

	again, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes should be salted")
}

func TestRandomPasswordHash(t *testing.T) {
	a, err := RandomPasswordHash()
	require.NoError(t, err)
	b, err := RandomPasswordHash()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.False(t, CheckPassword("", a))
}

func TestDummyCheck(t *testing.T) {
	assert.False(t, DummyCheck("fintrack-dummy-password"))
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenService([]byte("your-secret-key"), TokenTTL)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testSecret, TokenTTL)
	require.NoError(t, err)

	before := time.Now()
	token, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)

	assert.WithinDuration(t, before.Add(24*time.Hour), expiresAt, 2*time.Second)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestIssue_EmptyUserID(t *testing.T) {
	svc, err := NewTokenService(testSecret, TokenTTL)
	require.NoError(t, err)

	_, _, err = svc.Issue("")
	assert.Error(t, err)
}

func TestVerify_Rejects(t *testing.T) {
	svc, err := NewTokenService(testSecret, TokenTTL)
	require.NoError(t, err)
	other, err := NewTokenService(otherSecret, TokenTTL)
	require.NoError(t, err)

	foreign, _, err := other.Issue("user-1")
	require.NoError(t, err)

	stale, _, err := svc.WithClock(func() time.Time {
		return time.Now().Add(-25 * time.Hour)
	}).Issue("user-1")
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(testSecret)
	require.NoError(t, err)

	mismatch, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "user-2",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"different key", foreign},
		{"expired", stale},
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"unsigned", unsigned},
		{"missing expiry", noExpiry},
		{"subject mismatch", mismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_ExpiresAfter24Hours(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewTokenService(testSecret, TokenTTL)
	require.NoError(t, err)

	token, _, err := svc.WithClock(func() time.Time { return issuedAt }).Issue("user-1")
	require.NoError(t, err)

	_, err = svc.WithClock(func() time.Time { return issuedAt.Add(23 * time.Hour) }).Verify(token)
	assert.NoError(t, err)

	_, err = svc.WithClock(func() time.Time { return issuedAt.Add(24*time.Hour + time.Second) }).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
