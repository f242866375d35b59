package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *TokenService {
	return NewTokenService(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "orgfees-test",
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService()

	token, expires, err := svc.IssueAccessToken("user-1", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expires, 5*time.Second)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "orgfees-test", claims.Issuer)
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.IssueRefreshToken("user-1", "session-1", "token-1")
	require.NoError(t, err)

	claims, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "token-1", claims.ID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := newTestService()

	access, _, err := svc.IssueAccessToken("user-1", "admin")
	require.NoError(t, err)
	_, err = svc.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken, "access token is signed with a different secret")

	// Same secrets for both token kinds still reject on the type claim
	shared := NewTokenService(Config{AccessSecret: "s", RefreshSecret: "s", AccessTTL: time.Minute, RefreshTTL: time.Minute})
	refresh, _, err := shared.IssueRefreshToken("user-1", "session-1", "token-1")
	require.NoError(t, err)
	_, err = shared.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.IssueAccessToken("user-1", "admin")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedToken(t *testing.T) {
	svc := newTestService()
	token, _, err := svc.IssueAccessToken("user-1", "admin")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ParseAccessToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer abc"))
	assert.Equal(t, "", ExtractBearerToken("abc"))
	assert.Equal(t, "", ExtractBearerToken(""))
}
