package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/middleware"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/thread"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// ExportHandler schedules transcript and report exports and serves the
// signed download links.
type ExportHandler struct {
	service   *service.ExportService
	threads   *thread.Registry
	validator *validator.Validate
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService, threads *thread.Registry, validate *validator.Validate) *ExportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ExportHandler{service: svc, threads: threads, validator: validate}
}

// ExportThread godoc
// @Summary Export thread transcript
// @Description Schedule a CSV or PDF transcript of the active conversation
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportThreadRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/thread [post]
func (h *ExportHandler) ExportThread(c *gin.Context) {
	var req dto.ExportThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	auth := authorityFromContext(c)
	sid := middleware.SessionID(c)
	identity, ok := identityFromContext(c)
	if auth == nil || sid == "" || !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sync := h.threads.For(sid, auth)
	contact, messages, _, _ := sync.Thread()
	if contact == nil {
		response.Error(c, appErrors.ErrNoActiveContact)
		return
	}

	job, err := h.service.EnqueueTranscript(service.TranscriptSnapshot{
		Requester: identity,
		Contact:   *contact,
		Messages:  messages,
	}, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// ExportReport godoc
// @Summary Export report
// @Description Schedule a CSV or PDF export of an upstream report
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body dto.ExportReportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/reports [post]
func (h *ExportHandler) ExportReport(c *gin.Context) {
	var req dto.ExportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}

	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.service.EnqueueReport(req.Kind, identity.ID, tokenFromContext(c), service.ReportParams{
		Days:     req.Days,
		SchoolID: req.SchoolID,
		ClassID:  req.ClassID,
	}, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/jobs/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	job, ok := h.service.Job(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export job not found"))
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download export
// @Description Stream a finished export file through its signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.service.ParseToken(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, http.StatusGone, "download link invalid or expired"))
		return
	}

	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export file not found"))
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(relPath)) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(relPath)+`"`)
	c.Header("Content-Type", contentType)
	c.File(file.Name())
}
