package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message represents a conversation message.
type Message struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Thinking  *ThinkingProcess `json:"thinking,omitempty"`
	Answer    *AnswerData      `json:"answer,omitempty"`
}

// StepStatus is the server-determined status of a reasoning step.
type StepStatus string

const (
	StepPending  StepStatus = "pending"
	StepActive   StepStatus = "active"
	StepComplete StepStatus = "complete"
)

// ThinkingProcess is a snapshot of the agent reasoning trace.
type ThinkingProcess struct {
	Steps      []ThinkingStep `json:"steps" validate:"dive"`
	IsComplete bool           `json:"isComplete"`
}

// ThinkingStep is one step of the reasoning trace.
type ThinkingStep struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status" validate:"omitempty,oneof=pending active complete"`
	Substeps    []string   `json:"substeps"`
}

// AnswerData is the structured answer attached to an agent message.
type AnswerData struct {
	MainMetric *MetricHighlight `json:"mainMetric,omitempty"`
	Reasoning  string           `json:"reasoning"`
	Sources    []SourceCard     `json:"sources" validate:"dive"`
	ChartData  *ChartData       `json:"chartData,omitempty"`
	Sentiment  *SentimentData   `json:"sentiment,omitempty"`
}

// MetricHighlight is the headline figure of an answer.
type MetricHighlight struct {
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Change *float64 `json:"change,omitempty"`
	Trend  string   `json:"trend,omitempty" validate:"omitempty,oneof=up down neutral"`
}

// SourceCard references a filing excerpt used to build an answer.
type SourceCard struct {
	ID         string  `json:"id" validate:"required"`
	Ticker     string  `json:"ticker"`
	Company    string  `json:"company"`
	Year       int     `json:"year"`
	DocType    string  `json:"docType"`
	Snippet    string  `json:"snippet"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
}

// ChartData is a chart attached to an answer.
type ChartData struct {
	Type  string           `json:"type" validate:"oneof=bar line"`
	Title string           `json:"title"`
	Data  []ChartDataPoint `json:"data"`
}

// ChartDataPoint is one bar or point of a chart.
type ChartDataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// SentimentData summarizes the tone of the underlying filings.
type SentimentData struct {
	Score   float64  `json:"score"`
	Label   string   `json:"label" validate:"oneof=Optimistic Neutral Cautious"`
	Factors []string `json:"factors"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Query    string      `json:"query"`
	Settings AppSettings `json:"settings"`
	Ticker   *string     `json:"ticker"`
}

// AnalyzeResponse is the body returned by POST /api/analyze.
type AnalyzeResponse struct {
	Thinking *ThinkingProcess `json:"thinking" validate:"required"`
	Answer   *AnswerData      `json:"answer" validate:"required"`
}

// SubmitQueryRequest is the request to submit a query through the local API.
type SubmitQueryRequest struct {
	Query string `json:"query"`
}

// ListMessagesResponse is the response for listing the live message buffer.
type ListMessagesResponse struct {
	SessionID string    `json:"sessionId,omitempty"`
	Messages  []Message `json:"messages"`
}

// CloneMessages returns a copy of msgs that shares no slices with the input.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// DedupeSources keeps the first source card for each id.
func DedupeSources(sources []SourceCard) []SourceCard {
	seen := make(map[string]struct{}, len(sources))
	out := make([]SourceCard, 0, len(sources))
	for _, src := range sources {
		if _, ok := seen[src.ID]; ok {
			continue
		}
		seen[src.ID] = struct{}{}
		out = append(out, src)
	}
	return out
}
