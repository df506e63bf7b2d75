package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// Notifications lists the caller's notifications.
func (c *Client) Notifications(ctx context.Context, token string) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notificacoes", token, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// UnreadNotifications returns the unread notification count.
func (c *Client) UnreadNotifications(ctx context.Context, token string) (*models.UnreadCount, error) {
	var count models.UnreadCount
	if err := c.do(ctx, http.MethodGet, "/api/notificacoes/nao-lidas/count", token, nil, &count); err != nil {
		return nil, err
	}
	return &count, nil
}

// MarkNotificationRead marks a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodPost, "/api/notificacoes/"+formatID(id)+"/marcar-lida", token, nil, nil)
}
