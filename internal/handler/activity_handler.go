package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// ActivityHandler exposes educational content entries.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler creates a new handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activities
// @Tags Activities
// @Produce json
// @Param turma_id query int false "Filter by class"
// @Param disciplina_id query int false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(c.Request.Context(), tokenFromContext(c), queryInt64(c, "turma_id"), queryInt64(c, "disciplina_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities)
}

// Get godoc
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	activity, err := h.service.Get(c.Request.Context(), tokenFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity)
}

// Create godoc
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body dto.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}
	activity, err := h.service.Create(c.Request.Context(), tokenFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}
