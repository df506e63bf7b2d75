package upstream

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// EngagementReport fetches the platform engagement summary.
func (c *Client) EngagementReport(ctx context.Context, token string, days int, schoolID int64) (*models.EngagementReport, error) {
	params := map[string]string{}
	if days > 0 {
		params["dias"] = strconv.Itoa(days)
	}
	if schoolID > 0 {
		params["escola_id"] = formatID(schoolID)
	}
	var report models.EngagementReport
	if err := c.do(ctx, http.MethodGet, "/api/relatorios/engajamento-geral"+queryString(params), token, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// PerformanceReport fetches per-class academic indicators.
func (c *Client) PerformanceReport(ctx context.Context, token string, schoolID, classID int64) ([]models.PerformanceReport, error) {
	params := map[string]string{}
	if schoolID > 0 {
		params["escola_id"] = formatID(schoolID)
	}
	if classID > 0 {
		params["turma_id"] = formatID(classID)
	}
	var reports []models.PerformanceReport
	if err := c.do(ctx, http.MethodGet, "/api/relatorios/desempenho-alunos"+queryString(params), token, nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// PEIReport fetches the PEI tracking summary.
func (c *Client) PEIReport(ctx context.Context, token string, schoolID int64) (*models.PEIReport, error) {
	params := map[string]string{}
	if schoolID > 0 {
		params["escola_id"] = formatID(schoolID)
	}
	var report models.PEIReport
	if err := c.do(ctx, http.MethodGet, "/api/relatorios/pei/acompanhamento"+queryString(params), token, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
