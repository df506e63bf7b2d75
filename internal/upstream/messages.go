package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// SendMessagePayload posts a new message.
type SendMessagePayload struct {
	RecipientID int64            `json:"destinatario_id"`
	Subject     string           `json:"assunto"`
	Body        string           `json:"conteudo"`
	MediaKind   models.MediaKind `json:"tipo_midia"`
	MediaURL    string           `json:"midia_url,omitempty"`
}

// Inbox lists messages addressed to the current identity.
func (c *Client) Inbox(ctx context.Context, token string) ([]models.Message, error) {
	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, "/api/mensagens", token, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Sent lists messages sent by the current identity.
func (c *Client) Sent(ctx context.Context, token string) ([]models.Message, error) {
	var messages []models.Message
	if err := c.do(ctx, http.MethodGet, "/api/mensagens/enviadas", token, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Send posts a new message and returns the created record.
func (c *Client) Send(ctx context.Context, token string, payload SendMessagePayload) (*models.Message, error) {
	var message models.Message
	if err := c.do(ctx, http.MethodPost, "/api/mensagens", token, payload, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead confirms the read receipt for a message.
func (c *Client) MarkRead(ctx context.Context, token string, messageID int64) (*models.Message, error) {
	var message models.Message
	path := "/api/mensagens/" + formatID(messageID) + "/confirmar-leitura"
	if err := c.do(ctx, http.MethodPost, path, token, nil, &message); err != nil {
		return nil, err
	}
	return &message, nil
}
