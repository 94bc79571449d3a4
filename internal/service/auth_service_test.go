package service

import (
	"testing"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *testutil.MockUserRepository, *testutil.MockStore) {
	users := testutil.NewMockUserRepository()
	store := testutil.NewMockStore()
	return NewAuthService(users, store, "test-access-secret", "test-refresh-secret"), users, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, store := newAuthService()

	user, err := svc.Register("alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	loggedIn, pair, err := svc.Login("alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, found, err := store.Get(cache.RefreshTokenKey(user.ID))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.Register("", "alice@example.com", "long enough password")
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = svc.Register("alice", "not-an-email", "long enough password")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register("alice", "alice@example.com", "short")
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.Register("alice", "alice@example.com", "long enough password")
	require.NoError(t, err)

	_, err = svc.Register("alice", "other@example.com", "long enough password")
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.Register("bob", "alice@example.com", "long enough password")
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.Register("alice", "alice@example.com", "long enough password")
	require.NoError(t, err)

	_, _, err = svc.Login("alice@example.com", "wrong password here")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "long enough password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, _ := newAuthService()

	user, err := svc.Register("alice", "alice@example.com", "long enough password")
	require.NoError(t, err)
	_, first, err := svc.Login("alice@example.com", "long enough password")
	require.NoError(t, err)

	refreshed, pair, err := svc.Refresh(first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshed.ID)
	assert.NotEmpty(t, pair.AccessToken)

	// a second login replaces the stored session, so the rotated token
	// from before no longer matches
	_, second, err := svc.Login("alice@example.com", "long enough password")
	require.NoError(t, err)

	_, _, err = svc.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)

	_, _, err = svc.Refresh(second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newAuthService()

	_, _, err := svc.Refresh("not a token")
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}

func TestLogoutEndsSession(t *testing.T) {
	svc, _, store := newAuthService()

	user, err := svc.Register("alice", "alice@example.com", "long enough password")
	require.NoError(t, err)
	_, pair, err := svc.Login("alice@example.com", "long enough password")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(user.ID))

	_, found, err := store.Get(cache.RefreshTokenKey(user.ID))
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = svc.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrSessionInvalid)
}
