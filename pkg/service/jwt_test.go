package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "electric-service/pkg/errors"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens(123456789, "client")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), claims.UserID)
	assert.Equal(t, "client", claims.Role)
	assert.False(t, claims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour, time.Hour)
	verifier := NewJWTService("secret-b", time.Hour, time.Hour)

	access, _, err := issuer.GenerateTokens(1, "client")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute, time.Hour)

	access, _, err := svc.GenerateTokens(1, "client")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, time.Hour)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.ValidateToken(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "token=%q", token)
	}
}
