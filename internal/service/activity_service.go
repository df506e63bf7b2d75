package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

type activityUpstream interface {
	Activities(ctx context.Context, token string, classID, subjectID int64) ([]models.Activity, error)
	Activity(ctx context.Context, token string, id int64) (*models.Activity, error)
	CreateActivity(ctx context.Context, token string, payload dto.CreateActivityRequest) (*models.Activity, error)
}

// ActivityService exposes educational content entries.
type ActivityService struct {
	upstream  activityUpstream
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs ActivityService.
func NewActivityService(upstream activityUpstream, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{upstream: upstream, validator: validate, logger: logger}
}

// List returns activities, optionally filtered by class and subject.
func (s *ActivityService) List(ctx context.Context, token string, classID, subjectID int64) ([]models.Activity, error) {
	return s.upstream.Activities(ctx, token, classID, subjectID)
}

// Get returns one activity.
func (s *ActivityService) Get(ctx context.Context, token string, id int64) (*models.Activity, error) {
	return s.upstream.Activity(ctx, token, id)
}

// Create validates and registers an activity.
func (s *ActivityService) Create(ctx context.Context, token string, req dto.CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	return s.upstream.CreateActivity(ctx, token, req)
}
