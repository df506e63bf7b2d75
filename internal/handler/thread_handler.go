package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/thread"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// ThreadHandler exposes the cascading conversation selection and the
// synchronized message thread.
type ThreadHandler struct {
	threads      *thread.Registry
	syncInterval time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewThreadHandler creates a new handler.
func NewThreadHandler(threads *thread.Registry, syncInterval time.Duration, validate *validator.Validate, logger *zap.Logger) *ThreadHandler {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThreadHandler{threads: threads, syncInterval: syncInterval, validator: validate, logger: logger}
}

func (h *ThreadHandler) synchronizer(c *gin.Context) *thread.Synchronizer {
	auth := authorityFromContext(c)
	sid := middleware.SessionID(c)
	if auth == nil || sid == "" {
		return nil
	}
	return h.threads.For(sid, auth)
}

// Selection godoc
// @Summary Current selection
// @Description Report the session's school, class and contact selection
// @Tags Threads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /threads/selection [get]
func (h *ThreadHandler) Selection(c *gin.Context) {
	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, selectionResponse(sync))
}

// SelectSchool godoc
// @Summary Select school
// @Description Set the school level of the conversation context
// @Tags Threads
// @Accept json
// @Produce json
// @Param payload body dto.SelectSchoolRequest true "School selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /threads/selection/school [post]
func (h *ThreadHandler) SelectSchool(c *gin.Context) {
	var req dto.SelectSchoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school selection"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid school selection"))
		return
	}

	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if _, err := sync.SelectSchool(c.Request.Context(), req.SchoolID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selectionResponse(sync))
}

// SelectClass godoc
// @Summary Select class
// @Description Set the class level of the conversation context
// @Tags Threads
// @Accept json
// @Produce json
// @Param payload body dto.SelectClassRequest true "Class selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /threads/selection/class [post]
func (h *ThreadHandler) SelectClass(c *gin.Context) {
	var req dto.SelectClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class selection"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class selection"))
		return
	}

	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if _, err := sync.SelectClass(c.Request.Context(), req.ClassID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selectionResponse(sync))
}

// SelectContact godoc
// @Summary Select contact
// @Description Pick the conversation partner and load the thread
// @Tags Threads
// @Accept json
// @Produce json
// @Param payload body dto.SelectContactRequest true "Contact selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /threads/selection/contact [post]
func (h *ThreadHandler) SelectContact(c *gin.Context) {
	var req dto.SelectContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact selection"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid contact selection"))
		return
	}

	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := sync.SelectContact(c.Request.Context(), req.ContactID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.threadResponse(c, sync))
}

// Thread godoc
// @Summary Current thread
// @Description Return the materialized conversation with the active contact
// @Tags Threads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /threads [get]
func (h *ThreadHandler) Thread(c *gin.Context) {
	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, h.threadResponse(c, sync))
}

// Refresh godoc
// @Summary Refresh thread
// @Description Run one synchronization pass against the school service
// @Tags Threads
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /threads/refresh [post]
func (h *ThreadHandler) Refresh(c *gin.Context) {
	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := sync.Synchronize(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.threadResponse(c, sync))
}

// Send godoc
// @Summary Send message
// @Description Post a message to the active contact and refresh the thread
// @Tags Threads
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /threads/messages [post]
func (h *ThreadHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}

	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	created, err := sync.Send(c.Request.Context(), req.Subject, req.Body, req.MediaKind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// MarkRead godoc
// @Summary Confirm read
// @Description Confirm a message's read receipt
// @Tags Threads
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /threads/messages/{id}/read [post]
func (h *ThreadHandler) MarkRead(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	updated, err := sync.MarkRead(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Stream godoc
// @Summary Thread event stream
// @Description Push thread snapshots over SSE while the view is attached
// @Tags Threads
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /threads/stream [get]
func (h *ThreadHandler) Stream(c *gin.Context) {
	sync := h.synchronizer(c)
	if sync == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Poller lifetime equals the stream's: the request context is
	// cancelled when the client disconnects, stopping the ticker.
	updates := make(chan struct{}, 1)
	poller := thread.NewPoller(sync, h.syncInterval, h.logger)
	go poller.Run(c.Request.Context(), func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	c.SSEvent("thread", h.threadResponse(c, sync))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-updates:
			c.SSEvent("thread", h.threadResponse(c, sync))
			return true
		}
	})
}

func (h *ThreadHandler) threadResponse(c *gin.Context, sync *thread.Synchronizer) dto.ThreadResponse {
	identity, _ := identityFromContext(c)
	contact, messages, syncedAt, stale := sync.Thread()

	out := dto.ThreadResponse{
		Contact:  contact,
		Messages: make([]dto.ThreadMessage, 0, len(messages)),
		SyncedAt: syncedAt,
		Stale:    stale,
	}
	for _, m := range messages {
		out.Messages = append(out.Messages, dto.ThreadMessage{
			Message:  m,
			Outbound: m.OutboundFor(identity.ID),
		})
	}
	return out
}

func selectionResponse(sync *thread.Synchronizer) dto.SelectionResponse {
	school, class, contact, classes, contacts := sync.Selection()
	return dto.SelectionResponse{
		School:   school,
		Class:    class,
		Contact:  contact,
		Classes:  classes,
		Contacts: contacts,
	}
}
