package analysis

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

const analyzeBody = `{
  "thinking": {
    "steps": [
      {"id": "1", "title": "Query Decomposition", "description": "Split the question", "status": "complete", "substeps": ["AAPL revenue 2023"]},
      {"id": "2", "title": "Retrieval", "description": "Searched 3 filings", "status": "complete", "substeps": []}
    ],
    "isComplete": true
  },
  "answer": {
    "mainMetric": {"label": "Revenue", "value": "$383.3B", "change": -2.8, "trend": "down"},
    "reasoning": "Apple's revenue declined slightly in fiscal 2023.",
    "sources": [
      {"id": "src-1", "ticker": "AAPL", "company": "Apple Inc.", "year": 2023, "docType": "10-K", "snippet": "Total net sales", "page": 21, "confidence": 0.92},
      {"id": "src-1", "ticker": "AAPL", "company": "Apple Inc.", "year": 2023, "docType": "10-K", "snippet": "duplicate", "page": 22, "confidence": 0.5},
      {"id": "src-2", "ticker": "AAPL", "company": "Apple Inc.", "year": 2022, "docType": "10-K", "snippet": "Total net sales", "page": 20, "confidence": 0.88}
    ],
    "chartData": {"type": "bar", "title": "Revenue", "data": [{"label": "2022", "value": 394.3}, {"label": "2023", "value": 383.3}]},
    "sentiment": {"score": 0.2, "label": "Neutral", "factors": ["iPhone demand"]}
  }
}`

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, AnalyzePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is AAPL revenue?", req["query"])
		assert.Equal(t, "AAPL", req["ticker"])
		settings := req["settings"].(map[string]any)
		assert.Equal(t, "gemini-2.0-flash", settings["model"])
		assert.EqualValues(t, 3, settings["searchDepth"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(analyzeBody))
	}))
	defer srv.Close()

	ticker := "AAPL"
	client := NewClient(srv.URL+"/", 5*time.Second, logger.NewNop())
	resp, err := client.Analyze(context.Background(), model.AnalyzeRequest{
		Query:    "What is AAPL revenue?",
		Settings: model.DefaultSettings(),
		Ticker:   &ticker,
	})

	require.NoError(t, err)
	require.Len(t, resp.Thinking.Steps, 2)
	assert.True(t, resp.Thinking.IsComplete)
	assert.Equal(t, "$383.3B", resp.Answer.MainMetric.Value)
	require.NotNil(t, resp.Answer.MainMetric.Change)
	assert.InDelta(t, -2.8, *resp.Answer.MainMetric.Change, 1e-9)

	require.Len(t, resp.Answer.Sources, 2, "duplicate source ids collapse")
	assert.Equal(t, "Total net sales", resp.Answer.Sources[0].Snippet)
	assert.Equal(t, "src-2", resp.Answer.Sources[1].ID)
	assert.Equal(t, "bar", resp.Answer.ChartData.Type)
	assert.Equal(t, "Neutral", resp.Answer.Sentiment.Label)
}

func TestAnalyzeNullTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		v, ok := req["ticker"]
		assert.True(t, ok, "ticker is always sent")
		assert.Nil(t, v)
		_, _ = w.Write([]byte(analyzeBody))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second, logger.NewNop()).Analyze(context.Background(), model.AnalyzeRequest{
		Query:    "Compare margins",
		Settings: model.DefaultSettings(),
	})
	require.NoError(t, err)
}

func TestAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"detail":"boom"}`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>oops</html>`,
		},
		{
			name:   "missing answer",
			status: http.StatusOK,
			body:   `{"thinking":{"steps":[],"isComplete":true}}`,
		},
		{
			name:   "bad step status",
			status: http.StatusOK,
			body:   `{"thinking":{"steps":[{"id":"1","status":"thinking"}],"isComplete":false},"answer":{"reasoning":"x","sources":[]}}`,
		},
		{
			name:   "bad sentiment label",
			status: http.StatusOK,
			body:   `{"thinking":{"steps":[],"isComplete":true},"answer":{"reasoning":"x","sources":[],"sentiment":{"score":1,"label":"Bullish","factors":[]}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := NewClient(srv.URL, 5*time.Second, logger.NewNop()).Analyze(context.Background(), model.AnalyzeRequest{
				Query:    "q",
				Settings: model.DefaultSettings(),
			})
			assert.Nil(t, resp)
			require.Error(t, err)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestAnalyzeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, logger.NewNop()).Analyze(context.Background(), model.AnalyzeRequest{Query: "q"})
	assert.Error(t, err)
}
