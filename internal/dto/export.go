package dto

import "github.com/kazumi-edu/kazumi-comm-gateway/internal/models"

// ExportThreadRequest schedules a transcript export of the active thread.
type ExportThreadRequest struct {
	Format models.ExportFormat `json:"format" validate:"required"`
}

// ExportReportRequest schedules an export of an upstream report.
type ExportReportRequest struct {
	Kind     string              `json:"kind" validate:"required"`
	Format   models.ExportFormat `json:"format" validate:"required"`
	Days     int                 `json:"dias,omitempty"`
	SchoolID int64               `json:"escola_id,omitempty"`
	ClassID  int64               `json:"turma_id,omitempty"`
}
