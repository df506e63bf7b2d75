package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

type notificationUpstream interface {
	Notifications(ctx context.Context, token string) ([]models.Notification, error)
	UnreadNotifications(ctx context.Context, token string) (*models.UnreadCount, error)
	MarkNotificationRead(ctx context.Context, token string, id int64) error
}

// NotificationService exposes the caller's notification feed.
type NotificationService struct {
	upstream notificationUpstream
	logger   *zap.Logger
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(upstream notificationUpstream, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{upstream: upstream, logger: logger}
}

// List returns the caller's notifications, newest first as delivered upstream.
func (s *NotificationService) List(ctx context.Context, token string) ([]models.Notification, error) {
	return s.upstream.Notifications(ctx, token)
}

// UnreadCount returns the number of unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, token string) (*models.UnreadCount, error) {
	return s.upstream.UnreadNotifications(ctx, token)
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, token string, id int64) error {
	return s.upstream.MarkNotificationRead(ctx, token, id)
}
