package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

type reportUpstream interface {
	EngagementReport(ctx context.Context, token string, days int, schoolID int64) (*models.EngagementReport, error)
	PerformanceReport(ctx context.Context, token string, schoolID, classID int64) ([]models.PerformanceReport, error)
	PEIReport(ctx context.Context, token string, schoolID int64) (*models.PEIReport, error)
}

// ReportService exposes managerial aggregate reports.
type ReportService struct {
	upstream reportUpstream
	logger   *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(upstream reportUpstream, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{upstream: upstream, logger: logger}
}

// Engagement returns platform usage figures over the given period.
func (s *ReportService) Engagement(ctx context.Context, token string, days int, schoolID int64) (*models.EngagementReport, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period must be at most 365 days")
	}
	return s.upstream.EngagementReport(ctx, token, days, schoolID)
}

// Performance returns per-class academic indicators.
func (s *ReportService) Performance(ctx context.Context, token string, schoolID, classID int64) ([]models.PerformanceReport, error) {
	return s.upstream.PerformanceReport(ctx, token, schoolID, classID)
}

// PEITracking returns aggregate figures for individual education plans.
func (s *ReportService) PEITracking(ctx context.Context, token string, schoolID int64) (*models.PEIReport, error) {
	return s.upstream.PEIReport(ctx, token, schoolID)
}
