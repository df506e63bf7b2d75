package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

type studentUpstream interface {
	Students(ctx context.Context, token string) ([]models.Student, error)
	Student(ctx context.Context, token string, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, token string, payload dto.CreateStudentRequest) (*models.Student, error)
	UpdateStudent(ctx context.Context, token string, id int64, payload dto.CreateStudentRequest) (*models.Student, error)
	StudentPEI(ctx context.Context, token string, studentID int64) (*models.PEI, error)
	PEIInterventions(ctx context.Context, token string, peiID int64) ([]models.PEIIntervention, error)
}

// StudentService exposes student records and their individual education plans.
type StudentService struct {
	upstream  studentUpstream
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(upstream studentUpstream, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{upstream: upstream, validator: validate, logger: logger}
}

// Students lists students visible to the caller.
func (s *StudentService) Students(ctx context.Context, token string) ([]models.Student, error) {
	return s.upstream.Students(ctx, token)
}

// Student returns one student record.
func (s *StudentService) Student(ctx context.Context, token string, id int64) (*models.Student, error) {
	return s.upstream.Student(ctx, token, id)
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, token string, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	return s.upstream.CreateStudent(ctx, token, req)
}

// Update modifies a student record.
func (s *StudentService) Update(ctx context.Context, token string, id int64, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	return s.upstream.UpdateStudent(ctx, token, id, req)
}

// PEI returns the active individual education plan for a student, with its
// interventions attached when the plan resolves.
func (s *StudentService) PEI(ctx context.Context, token string, studentID int64) (*models.PEI, error) {
	pei, err := s.upstream.StudentPEI(ctx, token, studentID)
	if err != nil {
		return nil, err
	}
	interventions, err := s.upstream.PEIInterventions(ctx, token, pei.ID)
	if err != nil {
		s.logger.Warn("pei interventions fetch failed", zap.Int64("pei_id", pei.ID), zap.Error(err))
		return pei, nil
	}
	pei.Interventions = interventions
	return pei, nil
}
