package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

type loginPayload struct {
	Email  string `json:"email"`
	Secret string `json:"senha"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RegisterPayload creates an upstream user account.
type RegisterPayload struct {
	Email    string      `json:"email"`
	Secret   string      `json:"senha"`
	FullName string      `json:"nome_completo"`
	Role     models.Role `json:"tipo_usuario"`
	Phone    string      `json:"telefone,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, secret string) (string, error) {
	var res tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", "", loginPayload{Email: email, Secret: secret}, &res)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Status == http.StatusUnauthorized {
			return "", appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return "", err
	}
	if res.AccessToken == "" {
		return "", appErrors.Clone(appErrors.ErrUpstreamUnavailable, "login response missing access token")
	}
	return res.AccessToken, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*models.Identity, error) {
	var identity models.Identity
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", payload, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Me validates the bearer token and returns the current identity.
func (c *Client) Me(ctx context.Context, token string) (*models.Identity, error) {
	var identity models.Identity
	if err := c.do(ctx, http.MethodGet, "/api/users/me", token, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
