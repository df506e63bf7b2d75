package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

type calendarUpstream interface {
	Events(ctx context.Context, token string) ([]models.Event, error)
	Event(ctx context.Context, token string, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, token string, payload dto.CreateEventRequest) (*models.Event, error)
}

// CalendarService exposes the shared school calendar.
type CalendarService struct {
	upstream  calendarUpstream
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs CalendarService.
func NewCalendarService(upstream calendarUpstream, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{upstream: upstream, validator: validate, logger: logger}
}

// Events lists all calendar events visible to the caller.
func (s *CalendarService) Events(ctx context.Context, token string) ([]models.Event, error) {
	return s.upstream.Events(ctx, token)
}

// Event returns one calendar event.
func (s *CalendarService) Event(ctx context.Context, token string, id int64) (*models.Event, error) {
	return s.upstream.Event(ctx, token, id)
}

// CreateEvent validates and registers a calendar event.
func (s *CalendarService) CreateEvent(ctx context.Context, token string, req dto.CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if !models.EventKind(req.Kind).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown event kind")
	}
	return s.upstream.CreateEvent(ctx, token, req)
}
