package domain

import (
	"fmt"
	"time"
)

// Channel is the delivery medium for a one-time code.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// ParseChannel accepts "email" or "phone".
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelPhone:
		return Channel(s), nil
	}
	return "", fmt.Errorf("unknown verification channel %q: %w", s, ErrBadRequest)
}

// Verification record types. A new code of the same type replaces the previous one.
const (
	VerificationEmail = "email"
	VerificationPhone = "phone"
	VerificationLogin = "login"
)

// UserVerification stores one outstanding code per user and purpose.
// PK: user_id, SK: type. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type UserVerification struct {
	UserID    string  `json:"userId" dynamodbav:"user_id"`
	Type      string  `json:"type" dynamodbav:"type"`
	Channel   Channel `json:"channel" dynamodbav:"channel"`
	CodeHash  string  `json:"-" dynamodbav:"code_hash"`
	Attempts  int     `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt int64   `json:"expiresAt" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Credentials are held by a pending login verification so the login can be
// replayed to dispatch a fresh code.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerificationSession is the client-side record of the single pending verification.
type VerificationSession struct {
	Channel     Channel      `json:"channel"`
	Target      string       `json:"target"`
	Credentials *Credentials `json:"credentials,omitempty"`
	IsLoginFlow bool         `json:"isLoginFlow"`
	StartedAt   time.Time    `json:"startedAt"`
}

// NewLoginSession builds the session for a deferred-login verification.
func NewLoginSession(ch Channel, target, email, password string) *VerificationSession {
	return &VerificationSession{
		Channel:     ch,
		Target:      target,
		Credentials: &Credentials{Email: email, Password: password},
		IsLoginFlow: true,
	}
}

// NewRegistrationSession builds the session for a fresh-registration channel confirmation.
func NewRegistrationSession(ch Channel, target string) *VerificationSession {
	return &VerificationSession{Channel: ch, Target: target}
}

// Validate checks that the session can drive a verification.
func (s *VerificationSession) Validate() error {
	if _, err := ParseChannel(string(s.Channel)); err != nil {
		return err
	}
	if s.Target == "" {
		return fmt.Errorf("verification target required: %w", ErrBadRequest)
	}
	if s.IsLoginFlow && (s.Credentials == nil || s.Credentials.Email == "") {
		return fmt.Errorf("login verification requires credentials: %w", ErrBadRequest)
	}
	return nil
}
