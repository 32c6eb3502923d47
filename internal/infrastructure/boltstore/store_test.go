package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "verify.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLoad_Empty(t *testing.T) {
	s, _ := openTemp(t)
	_, err := s.Load()
	assert.ErrorIs(t, err, verification.ErrNoSession)
}

func TestSave_OverwritesPreviousSession(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Save(domain.NewRegistrationSession(domain.ChannelPhone, "+15550000000")))
	require.NoError(t, s.Save(domain.NewLoginSession(domain.ChannelEmail, "a@b.com", "a@b.com", "secret123")))

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.IsLoginFlow)
	assert.Equal(t, domain.ChannelEmail, got.Channel)
	require.NotNil(t, got.Credentials)
	assert.Equal(t, "secret123", got.Credentials.Password)
}

func TestClear(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Save(domain.NewRegistrationSession(domain.ChannelEmail, "a@b.com")))
	require.NoError(t, s.Clear())
	_, err := s.Load()
	assert.ErrorIs(t, err, verification.ErrNoSession)
	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestSessionSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Save(domain.NewRegistrationSession(domain.ChannelEmail, "a@b.com")))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Target)
}

func TestAuthRoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	_, _, err := s.LoadAuth()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SaveAuth("tok", &domain.User{UserID: "u1", Role: domain.RoleAdmin}))
	token, user, err := s.LoadAuth()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}
