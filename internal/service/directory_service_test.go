package service

import (
	"context"
	"encoding/json"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

// memoryCacheRepo is a map-backed CacheRepository for service tests.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type fakeDirectoryUpstream struct {
	schools     []models.School
	classes     []models.Class
	teachers    []models.Teacher
	schoolCalls int
	classCalls  int
}

func (f *fakeDirectoryUpstream) Schools(ctx context.Context, token string) ([]models.School, error) {
	f.schoolCalls++
	return f.schools, nil
}

func (f *fakeDirectoryUpstream) CreateSchool(ctx context.Context, token string, payload dto.CreateSchoolRequest) (*models.School, error) {
	school := models.School{ID: int64(len(f.schools) + 1), Name: payload.Name}
	f.schools = append(f.schools, school)
	return &school, nil
}

func (f *fakeDirectoryUpstream) UpdateSchool(ctx context.Context, token string, id int64, payload dto.CreateSchoolRequest) (*models.School, error) {
	return &models.School{ID: id, Name: payload.Name}, nil
}

func (f *fakeDirectoryUpstream) DeleteSchool(ctx context.Context, token string, id int64) error {
	return nil
}

func (f *fakeDirectoryUpstream) SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error) {
	f.classCalls++
	return f.classes, nil
}

func (f *fakeDirectoryUpstream) Classes(ctx context.Context, token string, schoolYear int) ([]models.Class, error) {
	return f.classes, nil
}

func (f *fakeDirectoryUpstream) CreateClass(ctx context.Context, token string, payload dto.CreateClassRequest) (*models.Class, error) {
	return &models.Class{ID: 99, Name: payload.Name, SchoolID: payload.SchoolID}, nil
}

func (f *fakeDirectoryUpstream) UpdateClass(ctx context.Context, token string, id int64, payload dto.CreateClassRequest) (*models.Class, error) {
	return &models.Class{ID: id, Name: payload.Name}, nil
}

func (f *fakeDirectoryUpstream) DeleteClass(ctx context.Context, token string, id int64) error {
	return nil
}

func (f *fakeDirectoryUpstream) ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error) {
	return f.teachers, nil
}

func (f *fakeDirectoryUpstream) ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error) {
	return nil, nil
}

func (f *fakeDirectoryUpstream) AssignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	return nil
}

func (f *fakeDirectoryUpstream) UnassignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	return nil
}

func (f *fakeDirectoryUpstream) Teachers(ctx context.Context, token string) ([]models.Teacher, error) {
	return f.teachers, nil
}

func newDirectoryFixture() (*DirectoryService, *fakeDirectoryUpstream, *memoryCacheRepo) {
	upstream := &fakeDirectoryUpstream{
		schools: []models.School{{ID: 1, Name: "Escola Central"}},
		classes: []models.Class{{ID: 10, Name: "3A", SchoolID: 1}},
	}
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, true)
	return NewDirectoryService(upstream, cache, nil, nil), upstream, repo
}

func TestSchoolsCachedAfterFirstFetch(t *testing.T) {
	svc, upstream, _ := newDirectoryFixture()

	first, err := svc.Schools(context.Background(), "tok")
	require.NoError(t, err)
	second, err := svc.Schools(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.schoolCalls, "second read must come from cache")
}

func TestSchoolClassesCachedPerSchool(t *testing.T) {
	svc, upstream, _ := newDirectoryFixture()

	_, err := svc.SchoolClasses(context.Background(), "tok", 1)
	require.NoError(t, err)
	_, err = svc.SchoolClasses(context.Background(), "tok", 1)
	require.NoError(t, err)

	assert.Equal(t, 1, upstream.classCalls)
}

func TestCreateSchoolInvalidatesListing(t *testing.T) {
	svc, upstream, repo := newDirectoryFixture()

	_, err := svc.Schools(context.Background(), "tok")
	require.NoError(t, err)
	require.Contains(t, repo.entries, "directory:schools")

	_, err = svc.CreateSchool(context.Background(), "tok", dto.CreateSchoolRequest{Name: "Escola Nova"})
	require.NoError(t, err)
	assert.NotContains(t, repo.entries, "directory:schools")

	listed, err := svc.Schools(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Equal(t, 2, upstream.schoolCalls)
}

func TestCreateSchoolRejectsInvalidPayload(t *testing.T) {
	svc, _, _ := newDirectoryFixture()

	_, err := svc.CreateSchool(context.Background(), "tok", dto.CreateSchoolRequest{Email: "not-an-email"})
	require.Error(t, err)
}

func TestSchoolsWorkWithCacheDisabled(t *testing.T) {
	upstream := &fakeDirectoryUpstream{schools: []models.School{{ID: 1, Name: "Escola Central"}}}
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	svc := NewDirectoryService(upstream, cache, nil, nil)

	_, err := svc.Schools(context.Background(), "tok")
	require.NoError(t, err)
	_, err = svc.Schools(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.schoolCalls, "no cache means every read goes upstream")
}
