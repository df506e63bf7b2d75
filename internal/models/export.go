package models

import "time"

// ExportFormat enumerates supported export file formats.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportStatus tracks the lifecycle of an export job.
type ExportStatus string

const (
	ExportPending   ExportStatus = "pending"
	ExportRunning   ExportStatus = "running"
	ExportCompleted ExportStatus = "completed"
	ExportFailed    ExportStatus = "failed"
)

// ExportJob records an asynchronous thread or report export.
type ExportJob struct {
	ID            string       `json:"id"`
	Kind          string       `json:"kind"`
	Format        ExportFormat `json:"format"`
	Status        ExportStatus `json:"status"`
	FileName      string       `json:"file_name,omitempty"`
	RequestedBy   int64        `json:"requested_by"`
	Error         string       `json:"error,omitempty"`
	DownloadToken string       `json:"download_token,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}
