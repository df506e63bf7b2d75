package dto

import "github.com/kazumi-edu/kazumi-comm-gateway/internal/models"

// SignInRequest holds credentials for authenticating against the upstream.
type SignInRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"senha" validate:"required"`
}

// RegisterRequest creates a new upstream user account. Validation happens
// before any upstream call.
type RegisterRequest struct {
	Email         string      `json:"email" validate:"required,email"`
	Secret        string      `json:"senha" validate:"required,min=6"`
	ConfirmSecret string      `json:"confirmar_senha" validate:"required,eqfield=Secret"`
	FullName      string      `json:"nome_completo" validate:"required"`
	Role          models.Role `json:"tipo_usuario" validate:"required"`
	Phone         string      `json:"telefone,omitempty"`
}

// SessionResponse describes the session state returned to the front-end.
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *models.Identity `json:"identity,omitempty"`
}
