package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxStatus(t *testing.T) {
	assert.Equal(t, DocumentActive, MaxStatus(DocumentIdle, DocumentActive))
	assert.Equal(t, DocumentActive, MaxStatus(DocumentActive, DocumentIdle))
	assert.Equal(t, DocumentIdle, MaxStatus(DocumentIdle, DocumentIdle))
}

func TestDocumentFromSource(t *testing.T) {
	got := DocumentFromSource(SourceCard{ID: "s1", Ticker: "NVDA", Company: "NVIDIA Corp", Year: 2024, DocType: "10-K"})
	assert.Equal(t, ActiveDocument{Ticker: "NVDA", Name: "NVIDIA Corp", Doc: "10-K 2024", Status: DocumentActive}, got)

	got = DocumentFromSource(SourceCard{ID: "s2", Year: 2022, DocType: "10-Q"})
	assert.Equal(t, ActiveDocument{Ticker: "DOC", Name: "Unknown Company", Doc: "10-Q 2022", Status: DocumentActive}, got)
}

func TestDocumentsFromIngestion(t *testing.T) {
	got := DocumentsFromIngestion(&SuccessEvent{Ticker: "AAPL", Company: "Apple Inc.", Years: []string{"2021", "2022", "2023"}})
	assert.Equal(t, []ActiveDocument{
		{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K 2021", Status: DocumentIdle},
		{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K 2022", Status: DocumentIdle},
		{Ticker: "AAPL", Name: "Apple Inc.", Doc: "10-K 2023", Status: DocumentIdle},
	}, got)

	got = DocumentsFromIngestion(&SuccessEvent{Ticker: "TSLA", Years: []string{"2023"}})
	assert.Equal(t, "TSLA", got[0].Name)
}

func TestDedupeSources(t *testing.T) {
	got := DedupeSources([]SourceCard{
		{ID: "a", Snippet: "first"},
		{ID: "b"},
		{ID: "a", Snippet: "second"},
	})
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Snippet)
}

func TestSessionLastAnswer(t *testing.T) {
	older := &AnswerData{Reasoning: "older"}
	newer := &AnswerData{Reasoning: "newer"}

	s := Session{Messages: []Message{
		{ID: "1", Role: RoleAgent, Answer: older},
		{ID: "2", Role: RoleAgent, Answer: newer},
		{ID: "3", Role: RoleUser, Content: "follow up"},
		{ID: "4", Role: RoleAgent, Content: "Error connecting to agent."},
	}}
	assert.Same(t, newer, s.LastAnswer())
	assert.Nil(t, Session{}.LastAnswer())
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, DefaultSettings().Validate())

	tests := []struct {
		name     string
		settings AppSettings
	}{
		{"unknown model", AppSettings{Model: "gpt-4", SearchDepth: 3, Creativity: 0.1}},
		{"depth too low", AppSettings{Model: ModelGeminiFlash, SearchDepth: 0, Creativity: 0.1}},
		{"depth too high", AppSettings{Model: ModelGeminiPro, SearchDepth: 11, Creativity: 0.1}},
		{"creativity too high", AppSettings{Model: ModelGeminiFlash, SearchDepth: 3, Creativity: 1.5}},
		{"negative creativity", AppSettings{Model: ModelGeminiFlash, SearchDepth: 3, Creativity: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.settings.Validate())
		})
	}
}
