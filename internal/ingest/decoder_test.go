package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

const sampleStream = "{\"type\":\"log\",\"message\":\"Fetching filings for AAPL\"}\n" +
	"{\"type\":\"log\",\"message\":\"Indexing 10-K 2023\"}\r\n" +
	"\n" +
	"{\"type\":\"success\",\"message\":\"done\",\"ticker\":\"AAPL\",\"company\":\"Apple Inc.\",\"years\":[\"2021\",\"2022\",\"2023\"]}\n"

func decodeAll(chunks ...string) []model.StreamEvent {
	dec := NewDecoder(logger.NewNop())
	var out []model.StreamEvent
	for _, c := range chunks {
		out = append(out, dec.Feed([]byte(c))...)
	}
	return append(out, dec.Flush()...)
}

func TestDecoderWholeStream(t *testing.T) {
	events := decodeAll(sampleStream)
	require.Len(t, events, 3)
	assert.Equal(t, &model.LogEvent{Message: "Fetching filings for AAPL"}, events[0])
	assert.Equal(t, &model.LogEvent{Message: "Indexing 10-K 2023"}, events[1])
	assert.Equal(t, &model.SuccessEvent{
		Ticker:  "AAPL",
		Company: "Apple Inc.",
		Years:   []string{"2021", "2022", "2023"},
		Message: "done",
	}, events[2])
}

func TestDecoderChunkBoundaryInvariance(t *testing.T) {
	want := decodeAll(sampleStream)

	for i := 0; i <= len(sampleStream); i++ {
		for j := i; j <= len(sampleStream); j++ {
			got := decodeAll(sampleStream[:i], sampleStream[i:j], sampleStream[j:])
			require.Equal(t, want, got, "split at %d and %d", i, j)
		}
	}
}

func TestDecoderByteAtATime(t *testing.T) {
	want := decodeAll(sampleStream)

	chunks := make([]string, 0, len(sampleStream))
	for i := 0; i < len(sampleStream); i++ {
		chunks = append(chunks, sampleStream[i:i+1])
	}
	assert.Equal(t, want, decodeAll(chunks...))
}

func TestDecoderWaitsForTerminator(t *testing.T) {
	dec := NewDecoder(logger.NewNop())

	assert.Empty(t, dec.Feed([]byte(`{"type":"log","message":"half`)))
	assert.NotZero(t, dec.Buffered())

	events := dec.Feed([]byte(`-way"}` + "\n"))
	require.Len(t, events, 1)
	assert.Equal(t, "half-way", events[0].Text())
	assert.Zero(t, dec.Buffered())
}

func TestDecoderSkipsMalformedLines(t *testing.T) {
	stream := "{\"type\":\"log\",\"message\":\"a\"}\n" +
		"not-json\n" +
		"{\"type\":\"heartbeat\"}\n" +
		"{\"type\":\"log\",\"message\":\"b\"}\n"

	events := decodeAll(stream)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Text())
	assert.Equal(t, "b", events[1].Text())
}

func TestDecoderFlushDecodesUnterminatedTail(t *testing.T) {
	dec := NewDecoder(logger.NewNop())

	assert.Empty(t, dec.Feed([]byte(`{"type":"error","message":"No filings found"}`)))

	events := dec.Flush()
	require.Len(t, events, 1)
	assert.Equal(t, &model.ErrorEvent{Message: "No filings found"}, events[0])
	assert.Empty(t, dec.Flush())
}
