package jwtinfra

import (
	"testing"
	"time"

	"github.com/go-otp-verify/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_SignVerifyRoundTrip(t *testing.T) {
	p := NewTestProvider(t)

	signed, err := p.Sign("u1", "seller", "s1")
	require.NoError(t, err)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, Issuer, claims.Issuer)
	assert.Equal(t, "s1", claims.ID)
}

func TestProvider_RejectsForeignKey(t *testing.T) {
	signed, err := NewTestProvider(t).Sign("u1", "admin", "s1")
	require.NoError(t, err)

	_, err = NewTestProvider(t).Verify(signed)
	assert.Error(t, err)
}

func TestNewProvider_MissingKeyFile(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: "/nonexistent/key.pem"})
	assert.ErrorContains(t, err, "read private key")
}

func TestProvider_RejectsOtherAlgorithms(t *testing.T) {
	p := NewTestProvider(t)
	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    "u1",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := hs.SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestProvider_RejectsExpired(t *testing.T) {
	p := NewTestProvider(t)
	p.expiry = -time.Minute
	signed, err := p.Sign("u1", "buyer", "s1")
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
