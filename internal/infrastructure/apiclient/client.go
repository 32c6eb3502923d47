package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-otp-verify/internal/config"
	"github.com/go-otp-verify/internal/domain"
)

const maxBodyBytes = 1 << 20

// Error is a request the server answered with success=false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type envelope struct {
	Success              bool         `json:"success"`
	Message              string       `json:"message"`
	Error                string       `json:"error"`
	Token                string       `json:"token"`
	User                 *domain.User `json:"user"`
	RequiresVerification bool         `json:"requiresVerification"`
	VerificationMethod   string       `json:"verificationMethod"`
}

// Client talks to the verification REST API. Requests are sent once; there is no retry.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(cfg *config.ClientConfig) *Client {
	return &Client{
		baseURL: cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *Client) Login(ctx context.Context, email, password string, method domain.Channel) (*domain.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	if method != "" {
		body["verificationMethod"] = string(method)
	}
	env, err := c.post(ctx, "/auth/login", body)
	if err != nil {
		return nil, err
	}
	return env.result(), nil
}

func (c *Client) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error) {
	env, err := c.post(ctx, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	return env.result(), nil
}

func (c *Client) VerifyLoginOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	env, err := c.post(ctx, "/auth/verify-login-otp", map[string]string{"email": email, "otp": otp})
	if err != nil {
		return nil, err
	}
	return env.result(), nil
}

func (c *Client) VerifyEmailOTP(ctx context.Context, email, otp string) error {
	_, err := c.post(ctx, "/verify-email-otp", map[string]string{"otp": otp, "email": email})
	return err
}

func (c *Client) VerifyPhoneOTP(ctx context.Context, phone, otp string) error {
	_, err := c.post(ctx, "/verify-phone-otp", map[string]string{"otp": otp, "phone": phone})
	return err
}

func (c *Client) SendEmailOTP(ctx context.Context, email string) error {
	_, err := c.post(ctx, "/send-email-otp", map[string]string{"email": email})
	return err
}

func (c *Client) SendPhoneOTP(ctx context.Context, phone string) error {
	_, err := c.post(ctx, "/send-phone-otp", map[string]string{"phone": phone})
	return err
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.message(resp.StatusCode)}
	}
	return &env, nil
}

func (e *envelope) message(status int) string {
	switch {
	case e.Error != "":
		return e.Error
	case e.Message != "":
		return e.Message
	}
	return http.StatusText(status)
}

func (e *envelope) result() *domain.AuthResult {
	return &domain.AuthResult{
		Token:                e.Token,
		User:                 e.User,
		RequiresVerification: e.RequiresVerification,
		VerificationMethod:   domain.Channel(e.VerificationMethod),
	}
}
