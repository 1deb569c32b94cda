package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("access-test-secret", "refresh-test-secret", 15*time.Minute, 168*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken(42, "doc@example.com", "Dr. Ana")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MedicID)
	assert.Equal(t, "doc@example.com", claims.Email)
	assert.Equal(t, "Dr. Ana", claims.Name)
	assert.Equal(t, "42", claims.Subject)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateRefreshToken(42)
	require.NoError(t, err)

	claims, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MedicID)
}

func TestAccessToken_Expired(t *testing.T) {
	m := NewJWTManager("access-test-secret", "refresh-test-secret", -time.Minute, 168*time.Hour)

	token, err := m.GenerateAccessToken(1, "doc@example.com", "Dr. Ana")
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestTokens_CrossSecretRejected(t *testing.T) {
	m := newTestManager()

	// A refresh token must never verify as an access token and vice versa.
	refresh, err := m.GenerateRefreshToken(1)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(refresh)
	assert.Error(t, err)

	access, err := m.GenerateAccessToken(1, "doc@example.com", "Dr. Ana")
	require.NoError(t, err)
	_, err = m.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestAccessToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewJWTManager("different-secret", "refresh-test-secret", 15*time.Minute, 168*time.Hour)

	token, err := m.GenerateAccessToken(1, "doc@example.com", "Dr. Ana")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestAccessToken_Garbage(t *testing.T) {
	m := newTestManager()

	_, err := m.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
}
