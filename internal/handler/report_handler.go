package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/service"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/response"
)

// ReportHandler exposes managerial aggregate reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Engagement godoc
// @Summary Engagement report
// @Description Platform usage figures over a period
// @Tags Reports
// @Produce json
// @Param dias query int false "Period in days (default 30)"
// @Param escola_id query int false "Filter by school"
// @Success 200 {object} response.Envelope
// @Router /reports/engagement [get]
func (h *ReportHandler) Engagement(c *gin.Context) {
	report, err := h.service.Engagement(c.Request.Context(), tokenFromContext(c), queryInt(c, "dias"), queryInt64(c, "escola_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Performance godoc
// @Summary Performance report
// @Description Per-class academic indicators
// @Tags Reports
// @Produce json
// @Param escola_id query int false "Filter by school"
// @Param turma_id query int false "Filter by class"
// @Success 200 {object} response.Envelope
// @Router /reports/performance [get]
func (h *ReportHandler) Performance(c *gin.Context) {
	reports, err := h.service.Performance(c.Request.Context(), tokenFromContext(c), queryInt64(c, "escola_id"), queryInt64(c, "turma_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports)
}

// PEITracking godoc
// @Summary PEI tracking report
// @Description Aggregate figures for individual education plans
// @Tags Reports
// @Produce json
// @Param escola_id query int false "Filter by school"
// @Success 200 {object} response.Envelope
// @Router /reports/pei [get]
func (h *ReportHandler) PEITracking(c *gin.Context) {
	report, err := h.service.PEITracking(c.Request.Context(), tokenFromContext(c), queryInt64(c, "escola_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
