package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-otp-verify/internal/application/verification"
	"github.com/go-otp-verify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct{ mock.Mock }

func (m *mockAPI) Login(ctx context.Context, email, password string, method domain.Channel) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password, method)
	r, _ := args.Get(0).(*domain.AuthResult)
	return r, args.Error(1)
}
func (m *mockAPI) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.AuthResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*domain.AuthResult)
	return r, args.Error(1)
}
func (m *mockAPI) VerifyLoginOTP(ctx context.Context, email, otp string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, otp)
	r, _ := args.Get(0).(*domain.AuthResult)
	return r, args.Error(1)
}
func (m *mockAPI) VerifyEmailOTP(ctx context.Context, email, otp string) error {
	return m.Called(ctx, email, otp).Error(0)
}
func (m *mockAPI) VerifyPhoneOTP(ctx context.Context, phone, otp string) error {
	return m.Called(ctx, phone, otp).Error(0)
}
func (m *mockAPI) SendEmailOTP(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAPI) SendPhoneOTP(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

// testApp builds an app reading input and holding its session in memory.
func testApp(input string, api *mockAPI) (*app, *verification.MemoryStore, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := newApp(strings.NewReader(input), out)
	store := verification.NewMemoryStore()
	a.api, a.store = api, store
	// the cooldown never runs out during a test
	a.tick = time.Hour
	return a, store, out
}

func savedSession(t *testing.T, store verification.Store, s *domain.VerificationSession) *domain.VerificationSession {
	t.Helper()
	require.NoError(t, store.Save(s))
	return s
}

func TestPrompt_PastedCodeSignsIn(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("123456\n", api)
	s := savedSession(t, store, domain.NewLoginSession(domain.ChannelEmail, "a@b.com", "a@b.com", "secret123"))
	api.On("VerifyLoginOTP", mock.Anything, "a@b.com", "123456").
		Return(&domain.AuthResult{Token: "tok", User: &domain.User{UserID: "u1", Role: domain.RoleSeller}}, nil)

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "Continue at "+verification.RouteSellerDashboard)
	token, _ := store.Auth()
	assert.Equal(t, "tok", token)
	_, err := store.Load()
	assert.ErrorIs(t, err, verification.ErrNoSession)
}

func TestPrompt_DigitsWithBackspace(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("1\n2\n9\n<\n3\n4\n5\n6\n", api)
	s := savedSession(t, store, domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com"))
	api.On("VerifyEmailOTP", mock.Anything, "new@b.com", "123456").Return(nil)

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), verification.RegistrationVerifiedMessage)
	assert.Contains(t, out.String(), "Continue at "+verification.RouteLogin)
	api.AssertExpectations(t)
}

func TestPrompt_RejectedCodeThenQuitKeepsSession(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("111111\nq\n", api)
	s := savedSession(t, store, domain.NewRegistrationSession(domain.ChannelPhone, "+15551234567"))
	api.On("VerifyPhoneOTP", mock.Anything, "+15551234567", "111111").Return(errors.New("invalid or expired code"))

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "Check the code and try again")
	assert.Contains(t, out.String(), "[_ _ _ _ _ _]")
	_, err := store.Load()
	assert.NoError(t, err)
}

func TestPrompt_RejectsNonDigits(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("x\n12ab56\nq\n", api)
	s := savedSession(t, store, domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com"))

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "Only digits are accepted.")
	assert.Contains(t, out.String(), "A code is 6 digits.")
	api.AssertNotCalled(t, "VerifyEmailOTP", mock.Anything, mock.Anything, mock.Anything)
}

func TestPrompt_ResendDuringCooldownIsRefused(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("r\nq\n", api)
	s := savedSession(t, store, domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com"))

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "You can ask for a new code in 10:00.")
	api.AssertNotCalled(t, "SendEmailOTP", mock.Anything, mock.Anything)
}

func TestPrompt_ResumedSessionKeepsRemainingCooldown(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("r\nq\n", api)
	s := domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com")
	s.StartedAt = time.Now().Add(-8 * time.Minute)
	savedSession(t, store, s)

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Regexp(t, `You can ask for a new code in (02:00|01:59)\.`, out.String())
	assert.NotContains(t, out.String(), "10:00")
	api.AssertNotCalled(t, "SendEmailOTP", mock.Anything, mock.Anything)
}

func TestPrompt_ResumedAfterCooldownResendsAtOnce(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("r\nq\n", api)
	s := domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com")
	s.StartedAt = time.Now().Add(-10 * time.Minute)
	savedSession(t, store, s)
	api.On("SendEmailOTP", mock.Anything, "new@b.com").Return(nil)

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "r to resend")
	assert.Contains(t, out.String(), "A new code was sent to new@b.com.")
	api.AssertExpectations(t)
}

func TestPrompt_InputClosedKeepsSession(t *testing.T) {
	api := &mockAPI{}
	a, store, out := testApp("12", api)
	s := savedSession(t, store, domain.NewRegistrationSession(domain.ChannelEmail, "new@b.com"))

	require.NoError(t, a.prompt(context.Background(), s))

	assert.Contains(t, out.String(), "Input closed")
	_, err := store.Load()
	assert.NoError(t, err)
}

func TestClock(t *testing.T) {
	assert.Equal(t, "10:00", clock(600))
	assert.Equal(t, "01:05", clock(65))
	assert.Equal(t, "00:00", clock(0))
}

// --- commands against a bolt file ---

func runCommand(t *testing.T, api *mockAPI, storePath, input string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	a := newApp(strings.NewReader(input), out)
	a.api = api
	a.tick = time.Hour
	cmd := newRootCommand(a)
	cmd.SetArgs(append(args, "--store", storePath))
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, a.shutdown())
	return out.String(), err
}

func TestLoginCommand_DirectSignIn(t *testing.T) {
	api := &mockAPI{}
	api.On("Login", mock.Anything, "a@b.com", "secret123", domain.Channel("")).
		Return(&domain.AuthResult{Token: "tok", User: &domain.User{Email: "a@b.com", Role: domain.RoleBuyer}}, nil)

	out, err := runCommand(t, api, filepath.Join(t.TempDir(), "verify.db"), "", "login", "a@b.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as a@b.com")
	assert.Contains(t, out, "Continue at "+verification.RouteProducts)
}

func TestLoginCommand_RejectsUnknownMethod(t *testing.T) {
	_, err := runCommand(t, &mockAPI{}, filepath.Join(t.TempDir(), "verify.db"), "", "login", "a@b.com", "-p", "secret123", "-m", "fax")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestLoginThenResumeThenDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verify.db")
	api := &mockAPI{}
	api.On("Login", mock.Anything, "a@b.com", "secret123", domain.ChannelPhone).
		Return(&domain.AuthResult{RequiresVerification: true, VerificationMethod: domain.ChannelPhone}, nil)

	out, err := runCommand(t, api, path, "q\n", "login", "a@b.com", "-p", "secret123", "-m", "phone")
	require.NoError(t, err)
	assert.Contains(t, out, "A code was sent by phone.")

	api.On("VerifyLoginOTP", mock.Anything, "a@b.com", "654321").Return(nil, errors.New("invalid or expired code")).Once()
	out, err = runCommand(t, api, path, "654321\nq\n", "code")
	require.NoError(t, err)
	assert.Contains(t, out, "Check the code and try again")

	out, err = runCommand(t, api, path, "", "discard")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending verification discarded.")

	_, err = runCommand(t, api, path, "", "code")
	assert.EqualError(t, err, "nothing to verify; run login, register or confirm first")
}

func TestConfirmCommand_SendsCode(t *testing.T) {
	api := &mockAPI{}
	api.On("SendEmailOTP", mock.Anything, "a@b.com").Return(nil)
	api.On("VerifyEmailOTP", mock.Anything, "a@b.com", "000111").Return(nil)

	out, err := runCommand(t, api, filepath.Join(t.TempDir(), "verify.db"), "000111\n", "confirm", "email", "a@b.com")
	require.NoError(t, err)
	assert.Contains(t, out, "A code was sent to a@b.com.")
	assert.Contains(t, out, verification.RegistrationVerifiedMessage)
}

func TestStatusCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verify.db")
	api := &mockAPI{}

	out, err := runCommand(t, api, path, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending verification.")
	assert.Contains(t, out, "Not signed in.")

	api.On("Login", mock.Anything, "a@b.com", "secret123", domain.Channel("")).
		Return(&domain.AuthResult{RequiresVerification: true, VerificationMethod: domain.ChannelEmail}, nil).Once()
	_, err = runCommand(t, api, path, "q\n", "login", "a@b.com", "-p", "secret123")
	require.NoError(t, err)

	out, err = runCommand(t, api, path, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Pending sign-in code by email for a@b.com")
}
