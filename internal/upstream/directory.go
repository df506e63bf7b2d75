package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// Schools lists all registered schools.
func (c *Client) Schools(ctx context.Context, token string) ([]models.School, error) {
	var schools []models.School
	if err := c.do(ctx, http.MethodGet, "/api/escolas", token, nil, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}

// CreateSchool registers a new school.
func (c *Client) CreateSchool(ctx context.Context, token string, payload dto.CreateSchoolRequest) (*models.School, error) {
	var school models.School
	if err := c.do(ctx, http.MethodPost, "/api/escolas", token, payload, &school); err != nil {
		return nil, err
	}
	return &school, nil
}

// UpdateSchool updates an existing school.
func (c *Client) UpdateSchool(ctx context.Context, token string, id int64, payload dto.CreateSchoolRequest) (*models.School, error) {
	var school models.School
	if err := c.do(ctx, http.MethodPut, "/api/escolas/"+formatID(id), token, payload, &school); err != nil {
		return nil, err
	}
	return &school, nil
}

// DeleteSchool removes a school.
func (c *Client) DeleteSchool(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/escolas/"+formatID(id), token, nil, nil)
}

// SchoolClasses lists the classes registered under a school.
func (c *Client) SchoolClasses(ctx context.Context, token string, schoolID int64) ([]models.Class, error) {
	var classes []models.Class
	if err := c.do(ctx, http.MethodGet, "/api/escolas/"+formatID(schoolID)+"/turmas", token, nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// Classes lists classes, optionally filtered by school year.
func (c *Client) Classes(ctx context.Context, token string, schoolYear int) ([]models.Class, error) {
	path := "/api/turmas"
	if schoolYear > 0 {
		path += queryString(map[string]string{"ano_letivo": strconv.Itoa(schoolYear)})
	}
	var classes []models.Class
	if err := c.do(ctx, http.MethodGet, path, token, nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// CreateClass registers a new class.
func (c *Client) CreateClass(ctx context.Context, token string, payload dto.CreateClassRequest) (*models.Class, error) {
	var class models.Class
	if err := c.do(ctx, http.MethodPost, "/api/turmas", token, payload, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// UpdateClass updates an existing class.
func (c *Client) UpdateClass(ctx context.Context, token string, id int64, payload dto.CreateClassRequest) (*models.Class, error) {
	var class models.Class
	if err := c.do(ctx, http.MethodPut, "/api/turmas/"+formatID(id), token, payload, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// DeleteClass removes a class.
func (c *Client) DeleteClass(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/turmas/"+formatID(id), token, nil, nil)
}

// ClassTeachers lists the teachers assigned to a class.
func (c *Client) ClassTeachers(ctx context.Context, token string, classID int64) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := c.do(ctx, http.MethodGet, "/api/turmas/"+formatID(classID)+"/professores", token, nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// ClassGuardians lists the guardians of a class's students.
func (c *Client) ClassGuardians(ctx context.Context, token string, classID int64) ([]models.Guardian, error) {
	var guardians []models.Guardian
	if err := c.do(ctx, http.MethodGet, "/api/turmas/"+formatID(classID)+"/responsaveis", token, nil, &guardians); err != nil {
		return nil, err
	}
	return guardians, nil
}

// AssignTeacher adds a teacher to a class.
func (c *Client) AssignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	path := "/api/turmas/" + formatID(classID) + "/professores/" + formatID(teacherID)
	return c.do(ctx, http.MethodPost, path, token, nil, nil)
}

// UnassignTeacher removes a teacher from a class.
func (c *Client) UnassignTeacher(ctx context.Context, token string, classID, teacherID int64) error {
	path := "/api/turmas/" + formatID(classID) + "/professores/" + formatID(teacherID)
	return c.do(ctx, http.MethodDelete, path, token, nil, nil)
}

// Teachers lists the full teacher roster.
func (c *Client) Teachers(ctx context.Context, token string) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := c.do(ctx, http.MethodGet, "/api/users/professores", token, nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}
