package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndValidate_RoundTrip(t *testing.T) {
	svc := NewJWTService("a-secret", time.Hour)

	token, err := svc.Generate(42, 9001)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, int64(9001), claims.TelegramID)
}

func TestJWTService_Validate_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour)
	verifier := NewJWTService("secret-b", time.Hour)

	token, err := issuer.Generate(1, 2)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTService_Validate_RejectsExpired(t *testing.T) {
	svc := NewJWTService("a-secret", -time.Minute)

	token, err := svc.Generate(1, 2)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTService_TTL(t *testing.T) {
	svc := NewJWTService("a-secret", 45*time.Minute)
	assert.Equal(t, 45*time.Minute, svc.TTL())
}
