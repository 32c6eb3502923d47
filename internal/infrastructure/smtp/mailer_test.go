package smtp

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_Headers(t *testing.T) {
	msg := string(buildMessage("noreply@x.com", "a@b.com", "Your code", "123456", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Contains(t, msg, "From: noreply@x.com\r\n")
	assert.Contains(t, msg, "To: a@b.com\r\n")
	assert.Contains(t, msg, "Subject: Your code\r\n")
	assert.Contains(t, msg, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.Contains(t, msg, "\r\n\r\n123456")
}

func TestSendEmail_UsesConfiguredAddressAndAuth(t *testing.T) {
	var gotAddr string
	var gotAuth smtp.Auth
	var gotTo []string
	m := &mailer{host: "mail.local", port: "2525", from: "f@x.com", username: "user", password: "pw",
		send: func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotAuth, gotTo = addr, a, to
			return nil
		}}

	require.NoError(t, m.SendEmail("a@b.com", "s", "b"))
	assert.Equal(t, "mail.local:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, []string{"a@b.com"}, gotTo)
}

func TestSendEmail_WrapsTransportError(t *testing.T) {
	m := &mailer{host: "h", port: "25", send: func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}}
	err := m.SendEmail("a@b.com", "s", "b")
	assert.ErrorContains(t, err, "send email to a@b.com")
}
