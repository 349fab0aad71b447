package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// streamServer writes each chunk and flushes it so the client sees separate reads.
func streamServer(t *testing.T, status int, chunks ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AddTickerPath, r.URL.Path)

		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AAPL", req.Ticker)
		assert.Equal(t, 3, req.Depth)

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(status)
		flusher, _ := w.(http.Flusher)
		for _, c := range chunks {
			_, _ = w.Write([]byte(c))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAddTickerSuccess(t *testing.T) {
	srv := streamServer(t, http.StatusOK,
		`{"type":"log","message":"Fetch`,
		"ing\"}\n{\"type\":\"log\",\"message\":\"Indexing\"}\n{\"type\":\"succ",
		`ess","message":"ok","ticker":"AAPL","company":"Apple Inc.","years":["2021","2022","2023"]}`+"\n",
	)

	var seen []model.StreamEvent
	client := NewClient(srv.URL, nil, logger.NewNop())
	success, err := client.AddTicker(context.Background(), "AAPL", 3, func(ev model.StreamEvent) {
		seen = append(seen, ev)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"2021", "2022", "2023"}, success.Years)
	assert.Equal(t, "Apple Inc.", success.Company)
	require.Len(t, seen, 3)
	assert.Equal(t, "Fetching", seen[0].Text())
	assert.Equal(t, "Indexing", seen[1].Text())
	assert.Equal(t, model.StreamEventSuccess, seen[2].EventType())
	assert.Equal(t, StateSuccess, StateOf(err))
}

func TestAddTickerSuccessWithoutTrailingNewline(t *testing.T) {
	srv := streamServer(t, http.StatusOK,
		`{"type":"success","ticker":"AAPL","years":["2023"]}`,
	)

	success, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(context.Background(), "AAPL", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", success.Ticker)
}

func TestAddTickerMalformedLineDoesNotBlock(t *testing.T) {
	srv := streamServer(t, http.StatusOK,
		"{\"type\":\"log\",\"message\":\"a\"}\nnot-json\n",
		"{\"type\":\"success\",\"ticker\":\"AAPL\",\"years\":[\"2023\"]}\n",
	)

	var texts []string
	_, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(context.Background(), "AAPL", 3, func(ev model.StreamEvent) {
		texts = append(texts, string(ev.EventType()))
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"log", "success"}, texts)
}

func TestAddTickerErrorEvent(t *testing.T) {
	srv := streamServer(t, http.StatusOK,
		"{\"type\":\"log\",\"message\":\"Searching EDGAR\"}\n",
		"{\"type\":\"error\",\"message\":\"No 10-K filings found for ZZZZ\"}\n",
		"{\"type\":\"log\",\"message\":\"after the end\"}\n",
	)

	var count int
	_, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(context.Background(), "AAPL", 3, func(model.StreamEvent) {
		count++
	})

	var jobErr *JobError
	require.ErrorAs(t, err, &jobErr)
	assert.Equal(t, "No 10-K filings found for ZZZZ", jobErr.Message)
	assert.Equal(t, 2, count, "events after the terminal one are not dispatched")
	assert.Equal(t, StateError, StateOf(err))
}

func TestAddTickerIncompleteStream(t *testing.T) {
	srv := streamServer(t, http.StatusOK, "{\"type\":\"log\",\"message\":\"working\"}\n")

	_, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(context.Background(), "AAPL", 3, nil)
	assert.ErrorIs(t, err, ErrIncompleteStream)
}

func TestAddTickerStatusError(t *testing.T) {
	srv := streamServer(t, http.StatusBadGateway, "upstream down")

	_, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(context.Background(), "AAPL", 3, nil)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
}

func TestAddTickerContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"type\":\"log\",\"message\":\"started\"}\n"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})

	errCh := make(chan error, 1)
	go func() {
		_, err := NewClient(srv.URL, nil, logger.NewNop()).AddTicker(ctx, "AAPL", 3, func(model.StreamEvent) {
			close(started)
		})
		errCh <- err
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrIncompleteStream)
	case <-time.After(5 * time.Second):
		t.Fatal("AddTicker did not return after cancel")
	}
}
