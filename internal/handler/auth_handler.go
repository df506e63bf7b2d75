package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/session"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/thread"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/upstream"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

type registrar interface {
	Register(ctx context.Context, payload upstream.RegisterPayload) (*models.Identity, error)
}

// AuthHandler terminates the browser-facing authentication endpoints and
// drives the session authority.
type AuthHandler struct {
	sessions  *session.Manager
	threads   *thread.Registry
	upstream  registrar
	validator *validator.Validate
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions *session.Manager, threads *thread.Registry, up registrar, validate *validator.Validate) *AuthHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AuthHandler{sessions: sessions, threads: threads, upstream: up, validator: validate}
}

// Login godoc
// @Summary Sign in
// @Description Exchange credentials for an authenticated gateway session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SignInRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	auth := authorityFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	identity, err := auth.SignIn(c.Request.Context(), req.Email, req.Secret)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.SessionResponse{Authenticated: true, Identity: identity})
}

// Register godoc
// @Summary Create account
// @Description Register a new upstream user account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Account payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}
	if !req.Role.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown user role"))
		return
	}

	identity, err := h.upstream.Register(c.Request.Context(), upstream.RegisterPayload{
		Email:    req.Email,
		Secret:   req.Secret,
		FullName: req.FullName,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, identity)
}

// Logout godoc
// @Summary Sign out
// @Description Clear the session's credential and conversation state
// @Tags Authentication
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	auth := authorityFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	auth.SignOut(c.Request.Context())

	sid := middleware.SessionID(c)
	if sid != "" {
		h.threads.Drop(sid)
		h.sessions.Drop(sid)
	}

	response.NoContent(c)
}

// Session godoc
// @Summary Current session
// @Description Report the resolved session state and identity
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	auth := authorityFromContext(c)
	if auth == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if auth.State() == session.StateUninitialized {
		if err := auth.Initialize(c.Request.Context()); err != nil {
			return
		}
	}
	if auth.State() == session.StateResolving {
		c.JSON(http.StatusAccepted, gin.H{"status": "loading"})
		return
	}

	identity, authenticated := auth.CurrentIdentity()
	res := dto.SessionResponse{Authenticated: authenticated}
	if authenticated {
		res.Identity = &identity
	}
	response.JSON(c, http.StatusOK, res)
}
