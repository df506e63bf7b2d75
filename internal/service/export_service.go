package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/export"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/jobs"
	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/storage"
)

// Export job kinds.
const (
	ExportKindTranscript  = "thread_transcript"
	ExportKindEngagement  = "engagement_report"
	ExportKindPerformance = "performance_report"
	ExportKindPEI         = "pei_report"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	RenderTranscript(entries []export.TranscriptEntry) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderTranscript(title string, entries []export.TranscriptEntry) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL         time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// TranscriptSnapshot is the conversation state captured when a transcript
// export is requested. Messages arriving after the request are not included.
type TranscriptSnapshot struct {
	Requester models.Identity
	Contact   models.Contact
	Messages  []models.Message
}

// ReportParams selects the upstream report to export.
type ReportParams struct {
	Days     int
	SchoolID int64
	ClassID  int64
}

type exportPayload struct {
	format     models.ExportFormat
	transcript *TranscriptSnapshot
	report     *ReportParams
	token      string
}

// ExportService renders conversation transcripts and managerial reports to
// CSV or PDF files through a background worker queue, and signs download URLs.
type ExportService struct {
	reports reportUpstream
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	queue   *jobs.Queue
	logger  *zap.Logger
	cfg     ExportConfig

	mu      sync.RWMutex
	records map[string]*models.ExportJob
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportUpstream, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}

	s := &ExportService{
		reports: reports,
		storage: store,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		records: make(map[string]*models.ExportJob),
	}
	s.queue = jobs.NewQueue("exports", s.handle, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers and the stale-file cleanup loop.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
	go s.cleanupLoop(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// EnqueueTranscript schedules a transcript export for the captured thread.
func (s *ExportService) EnqueueTranscript(snapshot TranscriptSnapshot, format models.ExportFormat) (*models.ExportJob, error) {
	if len(snapshot.Messages) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "thread has no messages to export")
	}
	return s.enqueue(ExportKindTranscript, snapshot.Requester.ID, exportPayload{
		format:     format,
		transcript: &snapshot,
	})
}

// EnqueueReport schedules an export of an upstream managerial report. The
// caller's bearer token rides along so the worker fetches with their rights.
func (s *ExportService) EnqueueReport(kind string, requesterID int64, token string, params ReportParams, format models.ExportFormat) (*models.ExportJob, error) {
	switch kind {
	case ExportKindEngagement, ExportKindPerformance, ExportKindPEI:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report kind")
	}
	return s.enqueue(kind, requesterID, exportPayload{
		format: format,
		report: &params,
		token:  token,
	})
}

func (s *ExportService) enqueue(kind string, requesterID int64, payload exportPayload) (*models.ExportJob, error) {
	switch payload.format {
	case models.ExportCSV, models.ExportPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	record := &models.ExportJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		Format:      payload.format,
		Status:      models.ExportPending,
		RequestedBy: requesterID,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: record.ID, Type: kind, Payload: payload}); err != nil {
		s.setFailure(record.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshotRecord(record.ID), nil
}

// Job returns the current state of an export job.
func (s *ExportService) Job(id string) (*models.ExportJob, bool) {
	rec := s.snapshotRecord(id)
	return rec, rec != nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (exportID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

func (s *ExportService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(exportPayload)
	if !ok {
		s.setFailure(job.ID, fmt.Errorf("unexpected payload type %T", job.Payload))
		return nil
	}

	s.setStatus(job.ID, models.ExportRunning)

	data, filename, err := s.render(ctx, job, payload)
	if err != nil {
		s.setFailure(job.ID, err)
		return err
	}

	relPath, err := s.storage.Save(filename, data)
	if err != nil {
		s.setFailure(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.setFailure(job.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if rec, ok := s.records[job.ID]; ok {
		rec.Status = models.ExportCompleted
		rec.FileName = relPath
		rec.DownloadToken = token
		rec.ExpiresAt = &expiresAt
		rec.CompletedAt = &now
		rec.Error = ""
	}
	s.mu.Unlock()
	return nil
}

func (s *ExportService) render(ctx context.Context, job jobs.Job, payload exportPayload) ([]byte, string, error) {
	timestamp := time.Now().UTC().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", job.Type, timestamp, payload.format)

	if payload.transcript != nil {
		data, err := s.renderTranscript(*payload.transcript, payload.format)
		return data, filename, err
	}
	if payload.report != nil {
		data, err := s.renderReport(ctx, job.Type, payload.token, *payload.report, payload.format)
		return data, filename, err
	}
	return nil, "", fmt.Errorf("export %s carries no payload", job.ID)
}

func (s *ExportService) renderTranscript(snapshot TranscriptSnapshot, format models.ExportFormat) ([]byte, error) {
	title := fmt.Sprintf("Conversa com %s", snapshot.Contact.FullName)

	entries := make([]export.TranscriptEntry, 0, len(snapshot.Messages))
	for _, m := range snapshot.Messages {
		sender := snapshot.Contact.FullName
		outbound := m.OutboundFor(snapshot.Requester.ID)
		if outbound {
			sender = snapshot.Requester.FullName
		}
		// The PDF reads like a chat log; the CSV is for machine ingestion.
		sentAt := m.SentAt.UTC().Format(time.RFC3339)
		if format == models.ExportPDF {
			sentAt = m.SentAt.Local().Format("02/01/2006 15:04")
		}
		entries = append(entries, export.TranscriptEntry{
			Sender:   sender,
			SentAt:   sentAt,
			Subject:  m.Subject,
			Body:     m.Body,
			Outbound: outbound,
		})
	}

	if format == models.ExportPDF {
		return s.pdf.RenderTranscript(title, entries)
	}
	return s.csv.RenderTranscript(entries)
}

func (s *ExportService) renderReport(ctx context.Context, kind, token string, params ReportParams, format models.ExportFormat) ([]byte, error) {
	var (
		dataset export.Dataset
		title   string
		err     error
	)
	switch kind {
	case ExportKindEngagement:
		dataset, title, err = s.buildEngagementDataset(ctx, token, params)
	case ExportKindPerformance:
		dataset, title, err = s.buildPerformanceDataset(ctx, token, params)
	case ExportKindPEI:
		dataset, title, err = s.buildPEIDataset(ctx, token, params)
	default:
		err = fmt.Errorf("unsupported report kind %s", kind)
	}
	if err != nil {
		return nil, err
	}

	if format == models.ExportPDF {
		return s.pdf.Render(dataset, title)
	}
	return s.csv.Render(dataset)
}

func (s *ExportService) buildEngagementDataset(ctx context.Context, token string, params ReportParams) (export.Dataset, string, error) {
	report, err := s.reports.EngagementReport(ctx, token, params.Days, params.SchoolID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := []map[string]string{
		{"Indicador": "Usuarios ativos", "Valor": fmt.Sprintf("%d", report.ActiveUsers)},
		{"Indicador": "Total de usuarios", "Valor": fmt.Sprintf("%d", report.TotalUsers)},
		{"Indicador": "Taxa de ativacao (%)", "Valor": fmt.Sprintf("%.2f", report.ActivationRate)},
		{"Indicador": "Total de acoes", "Valor": fmt.Sprintf("%d", report.TotalActions)},
		{"Indicador": "Mensagens enviadas", "Valor": fmt.Sprintf("%d", report.MessagesSent)},
		{"Indicador": "Eventos criados", "Valor": fmt.Sprintf("%d", report.EventsCreated)},
	}
	dataset := export.Dataset{Headers: []string{"Indicador", "Valor"}, Rows: rows}
	title := fmt.Sprintf("Relatorio de Engajamento (%d dias)", report.PeriodDays)
	return dataset, title, nil
}

func (s *ExportService) buildPerformanceDataset(ctx context.Context, token string, params ReportParams) (export.Dataset, string, error) {
	reports, err := s.reports.PerformanceReport(ctx, token, params.SchoolID, params.ClassID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(reports))
	for _, row := range reports {
		rows = append(rows, map[string]string{
			"Turma":               row.ClassName,
			"Total de alunos":     fmt.Sprintf("%d", row.TotalStudents),
			"Alunos com PEI":      fmt.Sprintf("%d", row.StudentsWithPEI),
			"Taxa de entrega (%)": fmt.Sprintf("%.2f", row.SubmissionRate),
			"Media geral":         fmt.Sprintf("%.2f", row.AverageGrade),
			"Frequencia (%)":      fmt.Sprintf("%.2f", row.AverageAttendance),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Turma", "Total de alunos", "Alunos com PEI", "Taxa de entrega (%)", "Media geral", "Frequencia (%)"},
		Rows:    rows,
	}
	return dataset, "Relatorio de Desempenho por Turma", nil
}

func (s *ExportService) buildPEIDataset(ctx context.Context, token string, params ReportParams) (export.Dataset, string, error) {
	report, err := s.reports.PEIReport(ctx, token, params.SchoolID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := []map[string]string{
		{"Grupo": "Total", "Categoria": "Alunos com PEI", "Quantidade": fmt.Sprintf("%d", report.TotalStudents)},
	}
	for _, g := range report.ByGrade {
		rows = append(rows, map[string]string{
			"Grupo": "Serie", "Categoria": g.Grade, "Quantidade": fmt.Sprintf("%d", g.Count),
		})
	}
	for _, n := range report.NeedsBreakdown {
		rows = append(rows, map[string]string{
			"Grupo": "Necessidade", "Categoria": n.Kind, "Quantidade": fmt.Sprintf("%d", n.Count),
		})
	}
	dataset := export.Dataset{Headers: []string{"Grupo", "Categoria", "Quantidade"}, Rows: rows}
	return dataset, "Relatorio de Acompanhamento PEI", nil
}

func (s *ExportService) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
			if err != nil {
				s.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				s.logger.Info("export files cleaned up", zap.Int("count", len(removed)))
				s.pruneRecords(removed)
			}
		}
	}
}

func (s *ExportService) pruneRecords(removedFiles []string) {
	removed := make(map[string]struct{}, len(removedFiles))
	for _, f := range removedFiles {
		removed[f] = struct{}{}
	}
	s.mu.Lock()
	for id, rec := range s.records {
		if rec.FileName == "" {
			continue
		}
		if _, gone := removed[rec.FileName]; gone {
			delete(s.records, id)
		}
	}
	s.mu.Unlock()
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	if rec, ok := s.records[id]; ok {
		rec.Status = status
	}
	s.mu.Unlock()
}

func (s *ExportService) setFailure(id string, err error) {
	s.mu.Lock()
	if rec, ok := s.records[id]; ok {
		rec.Status = models.ExportFailed
		rec.Error = strings.TrimSpace(err.Error())
	}
	s.mu.Unlock()
}

func (s *ExportService) snapshotRecord(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	clone := *rec
	return &clone
}
