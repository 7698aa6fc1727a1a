package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 3600)

	token, expiresIn, err := svc.Generate(42, "user@example.com", false)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestJWTService_AdminClaim(t *testing.T) {
	svc := NewJWTService("test-secret", 3600)

	token, _, err := svc.Generate(1, "admin@example.com", true)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService("test-secret", 3600)
	other := NewJWTService("other-secret", 3600)

	token, _, err := svc.Generate(1, "user@example.com", false)
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -60)

	token, _, err := svc.Generate(1, "user@example.com", false)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService("test-secret", 3600)

	_, err := svc.Verify("not.a.token")
	assert.Error(t, err)
}
