package upstream

import (
	"context"
	"net/http"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/dto"
	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// Activities lists educational content, optionally filtered by class and subject.
func (c *Client) Activities(ctx context.Context, token string, classID, subjectID int64) ([]models.Activity, error) {
	params := map[string]string{}
	if classID > 0 {
		params["turma_id"] = formatID(classID)
	}
	if subjectID > 0 {
		params["disciplina_id"] = formatID(subjectID)
	}
	var activities []models.Activity
	if err := c.do(ctx, http.MethodGet, "/api/atividades"+queryString(params), token, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// Activity fetches a single content entry.
func (c *Client) Activity(ctx context.Context, token string, id int64) (*models.Activity, error) {
	var activity models.Activity
	if err := c.do(ctx, http.MethodGet, "/api/atividades/"+formatID(id), token, nil, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// CreateActivity registers a new content entry.
func (c *Client) CreateActivity(ctx context.Context, token string, payload dto.CreateActivityRequest) (*models.Activity, error) {
	var activity models.Activity
	if err := c.do(ctx, http.MethodPost, "/api/atividades", token, payload, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}
