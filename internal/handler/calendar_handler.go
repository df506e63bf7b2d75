package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// CalendarHandler exposes the shared school calendar.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler creates a new handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// List godoc
// @Summary List events
// @Description List calendar events visible to the caller
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	events, err := h.service.Events(c.Request.Context(), tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Get godoc
// @Summary Get event
// @Description Return one calendar event
// @Tags Calendar
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Event(c.Request.Context(), tokenFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Create godoc
// @Summary Create event
// @Description Register a calendar event
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CreateEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	event, err := h.service.CreateEvent(c.Request.Context(), tokenFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}
