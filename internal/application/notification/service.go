package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-verify/internal/domain"
	"github.com/go-otp-verify/internal/pkg/id"
)

type Service interface {
	Notify(ctx context.Context, userID, kind, message string) error
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

type store interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type service struct {
	repo store
}

func NewService(repo store) Service {
	return &service{repo: repo}
}

// Notify records an unread security notification for the user.
func (s *service) Notify(ctx context.Context, userID, kind, message string) error {
	now := time.Now().UTC()
	return s.repo.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         userID,
		Kind:           kind,
		Message:        message,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("forbidden: %w", domain.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}
