package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// Events lists shared calendar events.
func (c *Client) Events(ctx context.Context, token string) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, "/api/eventos", token, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Event fetches a single calendar event.
func (c *Client) Event(ctx context.Context, token string, id int64) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodGet, "/api/eventos/"+formatID(id), token, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent registers a calendar event.
func (c *Client) CreateEvent(ctx context.Context, token string, payload dto.CreateEventRequest) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, http.MethodPost, "/api/eventos", token, payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
