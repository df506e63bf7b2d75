package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// Students lists student records visible to the caller.
func (c *Client) Students(ctx context.Context, token string) ([]models.Student, error) {
	var students []models.Student
	if err := c.do(ctx, http.MethodGet, "/api/alunos", token, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Student fetches a single student record.
func (c *Client) Student(ctx context.Context, token string, id int64) (*models.Student, error) {
	var student models.Student
	if err := c.do(ctx, http.MethodGet, "/api/alunos/"+formatID(id), token, nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateStudent registers a new student.
func (c *Client) CreateStudent(ctx context.Context, token string, payload dto.CreateStudentRequest) (*models.Student, error) {
	var student models.Student
	if err := c.do(ctx, http.MethodPost, "/api/alunos", token, payload, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateStudent updates an existing student record.
func (c *Client) UpdateStudent(ctx context.Context, token string, id int64, payload dto.CreateStudentRequest) (*models.Student, error) {
	var student models.Student
	if err := c.do(ctx, http.MethodPut, "/api/alunos/"+formatID(id), token, payload, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// StudentPEI fetches the active individualized education plan for a student.
func (c *Client) StudentPEI(ctx context.Context, token string, studentID int64) (*models.PEI, error) {
	var pei models.PEI
	if err := c.do(ctx, http.MethodGet, "/api/peis/aluno/"+formatID(studentID), token, nil, &pei); err != nil {
		return nil, err
	}
	return &pei, nil
}

// PEIInterventions lists the interventions logged against a PEI.
func (c *Client) PEIInterventions(ctx context.Context, token string, peiID int64) ([]models.PEIIntervention, error) {
	var interventions []models.PEIIntervention
	if err := c.do(ctx, http.MethodGet, "/api/peis/"+formatID(peiID)+"/intervencoes", token, nil, &interventions); err != nil {
		return nil, err
	}
	return interventions, nil
}
