package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kazumi-edu/kazumi-comm-gateway/pkg/config"
	appErrors "github.com/kazumi-edu/kazumi-comm-gateway/pkg/errors"
)

// Observer receives the outcome of each upstream call. Status is the HTTP
// status code, or 0 when the request never reached the service.
type Observer interface {
	ObserveUpstreamCall(operation string, status int, duration time.Duration)
}

// Client talks to the remote school REST service. It holds no session
// state; the bearer token is passed per call by the session layer.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// New constructs a client for the configured upstream. observer may be nil.
func New(cfg config.UpstreamConfig, logger *zap.Logger, observer Observer) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		observer: observer,
	}
}

// upstreamError is the error body shape the upstream service returns.
type upstreamError struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(method, path, 0, time.Since(start))
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "school service unreachable")
	}
	c.observe(method, path, resp.StatusCode, time.Since(start))
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return c.mapError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "decode upstream response")
	}
	return nil
}

func (c *Client) observe(method, path string, status int, duration time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstreamCall(method+" "+operationLabel(path), status, duration)
}

// operationLabel collapses a concrete path into a low-cardinality label:
// the query string is dropped and numeric segments become ":id".
func operationLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

func (c *Client) mapError(method, path string, resp *http.Response) error {
	var detail upstreamError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &detail)

	c.logger.Debug("upstream error",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", detail.Detail),
	)

	message := detail.Detail
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrValidation, message)
	default:
		return appErrors.Wrap(
			fmt.Errorf("upstream %s %s: status %d", method, path, resp.StatusCode),
			appErrors.ErrUpstreamUnavailable.Code,
			appErrors.ErrUpstreamUnavailable.Status,
			appErrors.ErrUpstreamUnavailable.Message,
		)
	}
}

func queryString(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
