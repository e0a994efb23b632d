package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jansetu/models"
	"jansetu/utils"
)

func expectUserByEmail(mock sqlmock.Sqlmock, email, passwordHash string) {
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM users WHERE email = \?`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "email", "password_hash", "role", "is_active", "created_at"}).
			AddRow(90, "Ward Officer", email, passwordHash, "authority", true, now))
}

func TestLoginIssuesTokenWithConfiguredTTL(t *testing.T) {
	db, mock := newMockDB(t)
	secret := []byte("test-secret")
	svc := NewAuthorityService(db, secret, 2)

	hash, err := utils.HashPassword("sw0rdfish")
	require.NoError(t, err)
	now := time.Now().UTC()

	expectUserByEmail(mock, "officer@example.org", hash)
	mock.ExpectQuery(`FROM authorities WHERE user_id = \?`).
		WithArgs(int64(90)).
		WillReturnRows(sqlmock.NewRows(authorityCols).
			AddRow(9, 90, 2, nil, 3, nil, 1, true, 0, 0, 0, 0.0, now, now))

	resp, err := svc.Login(&models.LoginRequest{Email: "officer@example.org", Password: "sw0rdfish"})
	require.NoError(t, err)
	assert.Equal(t, int64(90), resp.UserID)
	assert.Equal(t, int64(9), resp.AuthorityID)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	exp := time.Unix(int64(claims["exp"].(float64)), 0)
	assert.WithinDuration(t, now.Add(2*time.Hour), exp, time.Minute)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewAuthorityService(db, []byte("test-secret"), 24)

	hash, err := utils.HashPassword("sw0rdfish")
	require.NoError(t, err)

	expectUserByEmail(mock, "officer@example.org", hash)

	_, err = svc.Login(&models.LoginRequest{Email: "officer@example.org", Password: "guess"})
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}
