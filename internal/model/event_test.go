package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStreamEvent(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    StreamEvent
		wantErr bool
	}{
		{
			name: "log",
			line: `{"type":"log","message":"Downloading 10-K 2023"}`,
			want: &LogEvent{Message: "Downloading 10-K 2023"},
		},
		{
			name: "success",
			line: `{"type":"success","message":"Indexed 3 filings","ticker":"AAPL","company":"Apple Inc.","years":["2021","2022","2023"]}`,
			want: &SuccessEvent{Ticker: "AAPL", Company: "Apple Inc.", Years: []string{"2021", "2022", "2023"}, Message: "Indexed 3 filings"},
		},
		{
			name: "success without company",
			line: `{"type":"success","ticker":"AAPL","years":["2023"]}`,
			want: &SuccessEvent{Ticker: "AAPL", Years: []string{"2023"}},
		},
		{
			name: "error",
			line: `{"type":"error","message":"No filings found"}`,
			want: &ErrorEvent{Message: "No filings found"},
		},
		{name: "not json", line: `not-json`, wantErr: true},
		{name: "unknown type", line: `{"type":"progress","message":"50%"}`, wantErr: true},
		{name: "missing type", line: `{"message":"hello"}`, wantErr: true},
		{name: "log without message", line: `{"type":"log"}`, wantErr: true},
		{name: "success without years", line: `{"type":"success","ticker":"AAPL","years":[]}`, wantErr: true},
		{name: "success with blank year", line: `{"type":"success","ticker":"AAPL","years":[""]}`, wantErr: true},
		{name: "success without ticker", line: `{"type":"success","years":["2023"]}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStreamEvent([]byte(tt.line))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeStreamEventUnknownType(t *testing.T) {
	_, err := DecodeStreamEvent([]byte(`{"type":"progress","message":"x"}`))
	assert.ErrorIs(t, err, ErrUnknownEventType)
}

func TestEncodeStreamEvent(t *testing.T) {
	data, err := EncodeStreamEvent(&SuccessEvent{Ticker: "MSFT", Company: "Microsoft", Years: []string{"2023"}, Message: "done"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"success","message":"done","ticker":"MSFT","company":"Microsoft","years":["2023"]}`, string(data))

	data, err = EncodeStreamEvent(&LogEvent{Message: "working"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"log","message":"working"}`, string(data))

	ev, err := DecodeStreamEvent(data)
	require.NoError(t, err)
	assert.Equal(t, &LogEvent{Message: "working"}, ev)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&LogEvent{Message: "x"}))
	assert.True(t, IsTerminal(&SuccessEvent{Ticker: "A", Years: []string{"2023"}}))
	assert.True(t, IsTerminal(&ErrorEvent{Message: "x"}))
}
