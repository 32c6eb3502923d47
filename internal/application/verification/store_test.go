package verification

import (
	"testing"

	"github.com/go-otp-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LoadReturnsIndependentCopy(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(loginSession()))

	first, err := store.Load()
	require.NoError(t, err)
	first.Credentials.Password = "changed"
	first.Target = "other@b.com"

	second, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret123", second.Credentials.Password)
	assert.Equal(t, "a@b.com", second.Target)
}

func TestMemoryStore_SaveCopiesCredentials(t *testing.T) {
	store := NewMemoryStore()
	s := loginSession()
	require.NoError(t, store.Save(s))
	s.Credentials.Password = "changed"

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "secret123", got.Credentials.Password)
}

func TestMemoryStore_RegistrationSessionHasNoCredentials(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(domain.NewRegistrationSession(domain.ChannelPhone, "+15551234567")))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got.Credentials)
}
