package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jansetu/models"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	authorityID := int64(7)

	token, err := GenerateJWT(42, models.RoleAuthority, &authorityID, secret, 1)
	require.NoError(t, err)

	identity, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, models.RoleAuthority, identity.Role)
	require.True(t, identity.AuthorityID.Valid)
	assert.Equal(t, int64(7), identity.AuthorityID.Int64)
}

func TestJWTCitizenHasNoAuthorityClaim(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(42, models.RoleCitizen, nil, secret, 1)
	require.NoError(t, err)

	identity, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, identity.Role)
	assert.False(t, identity.AuthorityID.Valid)
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, models.RoleCitizen, nil, []byte("right"), 1)
	require.NoError(t, err)

	_, err = ParseJWT(token, []byte("wrong"))
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestParseJWTRejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT(42, models.RoleCitizen, nil, secret, -1)
	require.NoError(t, err)

	_, err = ParseJWT(token, secret)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, err := ParseJWT("not-a-token", []byte("secret"))
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}
