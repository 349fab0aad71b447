package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/finsight/internal/ingest"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/store"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

func TestAddTickerSuccess(t *testing.T) {
	ingester := &fakeIngester{events: []model.StreamEvent{
		&model.LogEvent{Message: "Fetching filings for AAPL"},
		&model.LogEvent{Message: "Indexing"},
		&model.SuccessEvent{Ticker: "AAPL", Company: "Apple Inc.", Years: []string{"2021", "2022", "2023"}, Message: "Indexed 3 filings"},
	}}
	pub := &fakePublisher{}
	svc := NewConversationService(context.Background(), Dependencies{
		Store:     store.NewMemoryStore(logger.NewNop()),
		Analyzer:  staticAnalyzer(answerWith()),
		Ingester:  ingester,
		Publisher: pub,
	}, logger.NewNop())

	var seen []model.StreamEventType
	outcome := svc.AddTicker(context.Background(), " aapl ", 3, func(ev model.StreamEvent) {
		seen = append(seen, ev.EventType())
	})

	assert.Equal(t, ingest.StateSuccess, outcome.State)
	assert.Equal(t, "Indexed 3 filings", outcome.Message)
	assert.Equal(t, []model.StreamEventType{model.StreamEventLog, model.StreamEventLog, model.StreamEventSuccess}, seen)

	docs := svc.Documents()
	require.Len(t, docs, 3)
	for i, year := range []string{"2021", "2022", "2023"} {
		assert.Equal(t, model.ActiveDocument{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K " + year, Status: model.DocumentIdle}, docs[i])
	}
	assert.Equal(t, docs, outcome.Documents)

	assert.Len(t, pub.ingest, 3)
	assert.Equal(t, []model.ConversationEventType{model.EventIngestFinished}, pub.conversation)
}

func TestAddTickerKeepsActiveStatus(t *testing.T) {
	analyzer := staticAnalyzer(answerWith(appleSource))
	ingester := &fakeIngester{events: []model.StreamEvent{
		&model.SuccessEvent{Ticker: "AAPL", Company: "Apple Inc.", Years: []string{"2022", "2023"}},
	}}
	svc := newTestService(t, nil, analyzer, ingester)

	_, err := svc.SubmitQuery(context.Background(), "AAPL revenue")
	require.NoError(t, err)

	svc.AddTicker(context.Background(), "AAPL", 2, nil)

	assert.Equal(t, []model.ActiveDocument{
		{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K 2022", Status: model.DocumentIdle},
		{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K 2023", Status: model.DocumentActive},
	}, svc.Documents())
}

func TestAddTickerFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend error event", &ingest.JobError{Message: "No 10-K filings found for ZZZZ"}, "No 10-K filings found for ZZZZ"},
		{"incomplete stream", ingest.ErrIncompleteStream, ingestIncompleteMessage},
		{"transport failure", fmt.Errorf("send ingest request: %w", errors.New("connection refused")), ingestFailedMessage},
		{"status error", &ingest.StatusError{StatusCode: 502, Body: "<html>bad gateway</html>"}, ingestFailedMessage},
		{"canceled", fmt.Errorf("read ingest stream: %w", context.Canceled), ingestCanceledMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester := &fakeIngester{
				events: []model.StreamEvent{&model.LogEvent{Message: "working"}},
				err:    tt.err,
			}
			svc := newTestService(t, nil, staticAnalyzer(answerWith()), ingester)

			outcome := svc.AddTicker(context.Background(), "ZZZZ", 1, nil)
			assert.Equal(t, ingest.StateError, outcome.State)
			assert.Equal(t, tt.want, outcome.Message)
			assert.Empty(t, outcome.Documents)
			assert.Empty(t, svc.Documents())
		})
	}
}
