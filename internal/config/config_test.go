package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.True(t, cfg.LoginOTPRequired)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.Equal(t, "user_verifications", cfg.DynamoTables.UserVerifications)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_TTL_SECONDS", "120")
	t.Setenv("LOGIN_OTP_REQUIRED", "false")
	t.Setenv("OTP_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := Load()
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
	assert.False(t, cfg.LoginOTPRequired)
	assert.Equal(t, 5, cfg.OTPMaxAttempts)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoadClient_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	cfg := LoadClient()
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
}
