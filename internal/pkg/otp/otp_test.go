package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigits(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.True(t, Valid(code), "code %q", code)
	}
}

func TestHashAndEqual(t *testing.T) {
	h := Hash("123456")
	assert.Len(t, h, 64)
	assert.True(t, Equal("123456", h))
	assert.False(t, Equal("123457", h))
	assert.False(t, Equal("123456", ""))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("000000"))
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("1234567"))
	assert.False(t, Valid("12a456"))
	assert.False(t, Valid("１２３４５６"))
}
