package services

import (
	"testing"
	"time"

	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (AuthService, *utils.JwtAuthenticator) {
	db := setupTestDB(t)
	authenticator := utils.NewJwtAuthenticator("test-secret", "inklane", time.Hour)
	return NewAuthService(db, authenticator), authenticator
}

func TestRegister(t *testing.T) {
	svc, authenticator := newAuthService(t)

	t.Run("creates contractor with company and valid session", func(t *testing.T) {
		contractor, token, err := svc.Register("Bob@Example.com", "Bob Builder", "hunter2222", "Bob's Builds")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", contractor.Email, "email is normalized")
		assert.NotEmpty(t, contractor.CompanyID)
		assert.NotEqual(t, "hunter2222", contractor.PasswordHash)

		user, err := authenticator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, contractor.ID, user.Sub)
		assert.Equal(t, contractor.CompanyID, user.CompanyID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, _, err := svc.Register("dup@example.com", "First", "hunter2222", "Firstco")
		require.NoError(t, err)

		_, _, err = svc.Register("dup@example.com", "Second", "hunter2222", "Secondco")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, _, err := svc.Register("short@example.com", "Shorty", "short", "Shortco")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidationFailed))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, _, err := svc.Register("", "Nameless", "hunter2222", "Noco")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidationFailed))
	})
}

func TestLogin(t *testing.T) {
	svc, authenticator := newAuthService(t)

	registered, _, err := svc.Register("login@example.com", "Login User", "hunter2222", "Loginco")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		contractor, token, err := svc.Login("Login@Example.com", "hunter2222")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, contractor.ID)

		user, err := authenticator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.Sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login("login@example.com", "wrongpass1")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login("ghost@example.com", "hunter2222")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	})
}
