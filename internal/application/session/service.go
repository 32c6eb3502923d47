package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-verify/internal/domain"
)

type Service interface {
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type sessionStore interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Disable(ctx context.Context, sessionID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	sessionRepo sessionStore
	userRepo    userStore
	now         func() time.Time
}

type ServiceDeps struct {
	SessionRepo sessionStore
	UserRepo    userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{sessionRepo: deps.SessionRepo, userRepo: deps.UserRepo, now: time.Now}
}

// GetCurrent returns the active session with its user attached.
func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.active(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	u, err := s.userRepo.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	sess.User = u
	return sess, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	if _, err := s.active(ctx, sessionID); err != nil {
		return err
	}
	return s.sessionRepo.Disable(ctx, sessionID)
}

func (s *service) active(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable || sess.ExpiresAt < s.now().Unix() {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}
