package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
	"github.com/capitalize-ai/finsight/pkg/metrics"
)

// AddTickerPath is the ingestion endpoint relative to the backend base URL.
const AddTickerPath = "/api/add_ticker"

const readChunkSize = 4096

// State is the lifecycle state of one ingestion job.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// ErrIncompleteStream is returned when the stream ends without a terminal event.
var ErrIncompleteStream = errors.New("ingestion stream ended without a result")

// JobError is a failure reported by the backend through an error event.
type JobError struct {
	Message string
}

func (e *JobError) Error() string {
	return "ingestion failed: " + e.Message
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingestion request failed with status %d", e.StatusCode)
}

// Request is the body of POST /api/add_ticker.
type Request struct {
	Ticker string `json:"ticker"`
	Depth  int    `json:"depth"`
}

// Client talks to the ingestion endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates an ingestion client for baseURL.
// A nil httpClient uses a client without an overall timeout; jobs are bounded by ctx.
func NewClient(baseURL string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log.Named("ingest"),
	}
}

// AddTicker starts an ingestion job and streams its events to onEvent in
// receipt order. It returns at the first terminal event.
func (c *Client) AddTicker(ctx context.Context, ticker string, depth int, onEvent func(model.StreamEvent)) (*model.SuccessEvent, error) {
	body, err := json.Marshal(Request{Ticker: ticker, Depth: depth})
	if err != nil {
		return nil, fmt.Errorf("marshal ingest request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AddTickerPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ingest request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	metrics.IngestActive.Inc()
	defer metrics.IngestActive.Dec()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send ingest request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	log := c.logger.With(zap.String("ticker", ticker))
	dec := NewDecoder(log)

	dispatch := func(events []model.StreamEvent) (*model.SuccessEvent, bool, error) {
		for _, ev := range events {
			if onEvent != nil {
				onEvent(ev)
			}
			switch e := ev.(type) {
			case *model.SuccessEvent:
				return e, true, nil
			case *model.ErrorEvent:
				return nil, true, &JobError{Message: e.Message}
			}
		}
		return nil, false, nil
	}

	chunk := make([]byte, readChunkSize)
	for {
		n, readErr := resp.Body.Read(chunk)
		if n > 0 {
			if success, done, jobErr := dispatch(dec.Feed(chunk[:n])); done {
				return success, jobErr
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read ingest stream: %w", readErr)
		}
	}

	if success, done, jobErr := dispatch(dec.Flush()); done {
		return success, jobErr
	}

	log.Warn("ingestion stream closed without a terminal event")
	return nil, ErrIncompleteStream
}

// StateOf maps the result of AddTicker to its terminal state.
func StateOf(err error) State {
	if err != nil {
		return StateError
	}
	return StateSuccess
}
