package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

const (
	cacheKeySchools       = "directory:schools"
	cacheKeySchoolClasses = "directory:school:%d:classes"
	cacheKeyTeachers      = "directory:teachers"
)

type directoryUpstream interface {
	Schools(ctx context.Context, token string) ([]models.School, error)
	CreateSchool(ctx context.Context, token string, payload dto.CreateSchoolRequest) (*models.School, error)
	UpdateSchool(ctx context.Context, token string, id int64, payload dto.CreateSchoolRequest) (*models.School, error)
	DeleteSchool(ctx context.Context, token string, id int64) error
	SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error)
	Classes(ctx context.Context, token string, schoolYear int) ([]models.Class, error)
	CreateClass(ctx context.Context, token string, payload dto.CreateClassRequest) (*models.Class, error)
	UpdateClass(ctx context.Context, token string, id int64, payload dto.CreateClassRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, token string, id int64) error
	ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error)
	ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error)
	AssignTeacher(ctx context.Context, token string, classID, teacherID int64) error
	UnassignTeacher(ctx context.Context, token string, classID, teacherID int64) error
	Teachers(ctx context.Context, token string) ([]models.Teacher, error)
}

// DirectoryService serves school and class listings with a Redis read-through
// cache, and forwards administrative mutations upstream.
type DirectoryService struct {
	upstream  directoryUpstream
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs DirectoryService.
func NewDirectoryService(upstream directoryUpstream, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{upstream: upstream, cache: cache, validator: validate, logger: logger}
}

// Schools lists all schools, served from cache when possible.
func (s *DirectoryService) Schools(ctx context.Context, token string) ([]models.School, error) {
	var cached []models.School
	if hit, _ := s.cache.Get(ctx, cacheKeySchools, &cached); hit {
		return cached, nil
	}

	schools, err := s.upstream.Schools(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKeySchools, schools, 0)
	return schools, nil
}

// CreateSchool registers a school and invalidates the listing cache.
func (s *DirectoryService) CreateSchool(ctx context.Context, token string, req dto.CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	school, err := s.upstream.CreateSchool(ctx, token, req)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, cacheKeySchools)
	return school, nil
}

// UpdateSchool modifies a school and invalidates the listing cache.
func (s *DirectoryService) UpdateSchool(ctx context.Context, token string, id int64, req dto.CreateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	school, err := s.upstream.UpdateSchool(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, cacheKeySchools)
	_ = s.cache.Invalidate(ctx, fmt.Sprintf(cacheKeySchoolClasses, id))
	return school, nil
}

// DeleteSchool removes a school and invalidates related caches.
func (s *DirectoryService) DeleteSchool(ctx context.Context, token string, id int64) error {
	if err := s.upstream.DeleteSchool(ctx, token, id); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, cacheKeySchools)
	_ = s.cache.Invalidate(ctx, fmt.Sprintf(cacheKeySchoolClasses, id))
	return nil
}

// SchoolClasses lists the classes of one school, served from cache when possible.
func (s *DirectoryService) SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error) {
	key := fmt.Sprintf(cacheKeySchoolClasses, schoolID)
	var cached []models.Class
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	classes, err := s.upstream.SchoolClasses(ctx, token, schoolID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, classes, 0)
	return classes, nil
}

// Classes lists classes across schools, optionally filtered by school year.
// Uncached: the year filter makes the key space unbounded.
func (s *DirectoryService) Classes(ctx context.Context, token string, schoolYear int) ([]models.Class, error) {
	return s.upstream.Classes(ctx, token, schoolYear)
}

// CreateClass registers a class and invalidates its school listing.
func (s *DirectoryService) CreateClass(ctx context.Context, token string, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	class, err := s.upstream.CreateClass(ctx, token, req)
	if err != nil {
		return nil, err
	}
	if req.SchoolID > 0 {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf(cacheKeySchoolClasses, req.SchoolID))
	}
	return class, nil
}

// UpdateClass modifies a class and invalidates its school listing.
func (s *DirectoryService) UpdateClass(ctx context.Context, token string, id int64, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	class, err := s.upstream.UpdateClass(ctx, token, id, req)
	if err != nil {
		return nil, err
	}
	if class != nil && class.SchoolID > 0 {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf(cacheKeySchoolClasses, class.SchoolID))
	}
	return class, nil
}

// DeleteClass removes a class. School listings are invalidated wholesale since
// the deleted record no longer reports its school.
func (s *DirectoryService) DeleteClass(ctx context.Context, token string, id int64) error {
	if err := s.upstream.DeleteClass(ctx, token, id); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, "directory:school:*")
	return nil
}

// ClassTeachers lists the teachers assigned to a class.
func (s *DirectoryService) ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error) {
	return s.upstream.ClassTeachers(ctx, token, classID)
}

// ClassGuardians lists the guardians of a class's students.
func (s *DirectoryService) ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error) {
	return s.upstream.ClassGuardians(ctx, token, classID)
}

// AssignTeacher links a teacher to a class.
func (s *DirectoryService) AssignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	return s.upstream.AssignTeacher(ctx, token, classID, teacherID)
}

// UnassignTeacher unlinks a teacher from a class.
func (s *DirectoryService) UnassignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	return s.upstream.UnassignTeacher(ctx, token, classID, teacherID)
}

// Teachers lists the full teacher roster, served from cache when possible.
func (s *DirectoryService) Teachers(ctx context.Context, token string) ([]models.Teacher, error) {
	var cached []models.Teacher
	if hit, _ := s.cache.Get(ctx, cacheKeyTeachers, &cached); hit {
		return cached, nil
	}

	teachers, err := s.upstream.Teachers(ctx, token)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKeyTeachers, teachers, 0)
	return teachers, nil
}
