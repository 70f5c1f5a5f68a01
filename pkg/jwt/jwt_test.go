package jwt

import (
	"testing"
	"time"

	"clinic-management/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(secret string, access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        secret,
		AccessExpiry:  access,
		RefreshExpiry: time.Hour,
	}, "clinic-test")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService("secret", time.Minute)
	userID := uuid.New()

	access, accessID, err := svc.GenerateAccessToken(userID, "ada@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, accessID, claims.TokenID)

	refresh, refreshID, err := svc.GenerateRefreshToken(userID, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, accessID, refreshID)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestService("secret", time.Minute).GenerateAccessToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = newTestService("other", time.Minute).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService("secret", -time.Minute)
	token, _, err := svc.GenerateAccessToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	token, _, err := newTestService("secret", time.Minute).GenerateAccessToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute}, "someone-else")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
