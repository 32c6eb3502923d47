package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-otp-verify/internal/domain"
	jwtinfra "github.com/go-otp-verify/internal/infrastructure/jwt"
	"github.com/go-otp-verify/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSessionSvc struct{ mock.Mock }

func (m *mockSessionSvc) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}
func (m *mockSessionSvc) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func TestGetCurrentSession_ReturnsSessionAndUser(t *testing.T) {
	p := jwtinfra.NewTestProvider(t)
	svc := &mockSessionSvc{}
	svc.On("GetCurrent", mock.Anything, "sess1").Return(&domain.Session{
		SessionID: "sess1",
		UserID:    "u1",
		Enable:    true,
		User:      &domain.User{UserID: "u1", Email: "a@b.com", Role: domain.RoleSeller},
	}, nil)
	h := NewSessionHandler(svc)

	rr := httptest.NewRecorder()
	middleware.Auth(p)(http.HandlerFunc(h.GetCurrent)).
		ServeHTTP(rr, bearerReq(t, p, http.MethodGet, "/sessions/current", "u1", domain.RoleSeller))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"a@b.com"`)
}

func TestLogout_ExpiredSessionIsUnauthorized(t *testing.T) {
	p := jwtinfra.NewTestProvider(t)
	svc := &mockSessionSvc{}
	svc.On("Logout", mock.Anything, "sess1").Return(fmt.Errorf("session expired: %w", domain.ErrUnauthorized))
	h := NewSessionHandler(svc)

	rr := httptest.NewRecorder()
	middleware.Auth(p)(http.HandlerFunc(h.Logout)).
		ServeHTTP(rr, bearerReq(t, p, http.MethodDelete, "/sessions/current", "u1", domain.RoleBuyer))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}
