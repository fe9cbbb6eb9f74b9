package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "nexolend/pkg/domain-errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-signing-key", "nexolend", "scoring-api")

	token, err := svc.GenerateAccessToken("loan-service", RoleService, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "loan-service", claims.ActorID)
	assert.Equal(t, RoleService, claims.Role)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", "nexolend", "scoring-api")

	token, err := svc.GenerateAccessToken("admin-1", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	issuer := NewJWTService("key-a", "nexolend", "scoring-api")
	verifier := NewJWTService("key-b", "nexolend", "scoring-api")

	token, err := issuer.GenerateAccessToken("admin-1", RoleAdmin, time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", "nexolend", "scoring-api")

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
