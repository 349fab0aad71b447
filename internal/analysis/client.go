// Package analysis calls the backend agent that answers a query.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
	"github.com/capitalize-ai/finsight/pkg/metrics"
)

// AnalyzePath is the analysis endpoint relative to the backend base URL.
const AnalyzePath = "/api/analyze"

// maxResponseBytes bounds the body read from the backend.
const maxResponseBytes = 16 << 20

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("analysis request failed with status %d", e.StatusCode)
}

// Client posts queries to the analysis endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates an analysis client for baseURL.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("analysis"),
	}
}

// Analyze sends one request and decodes the agent's reasoning trace and answer.
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) (resp *model.AnalyzeResponse, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.RecordAnalysis(status, time.Since(start).Seconds())
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AnalyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send analysis request: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read analysis response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		c.logger.Warn("analysis backend returned an error status",
			zap.Int("status", httpResp.StatusCode),
		)
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: truncate(string(data), 512)}
	}

	var out model.AnalyzeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode analysis response: %w", err)
	}
	if err := model.Validate(out); err != nil {
		return nil, fmt.Errorf("invalid analysis response: %w", err)
	}

	out.Answer.Sources = model.DedupeSources(out.Answer.Sources)
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
