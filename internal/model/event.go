package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StreamEventType is the discriminator of an ingestion stream event.
type StreamEventType string

const (
	StreamEventLog     StreamEventType = "log"
	StreamEventSuccess StreamEventType = "success"
	StreamEventError   StreamEventType = "error"
)

// StreamEvent is one decoded line of the ingestion stream.
// It is implemented by *LogEvent, *SuccessEvent and *ErrorEvent.
type StreamEvent interface {
	EventType() StreamEventType
	Text() string
}

// LogEvent reports progress of an ingestion job.
type LogEvent struct {
	Message string `json:"message" validate:"required"`
}

// SuccessEvent terminates an ingestion job that indexed at least one filing.
type SuccessEvent struct {
	Ticker  string   `json:"ticker" validate:"required"`
	Company string   `json:"company"`
	Years   []string `json:"years" validate:"required,min=1,dive,required"`
	Message string   `json:"message"`
}

// ErrorEvent terminates a failed ingestion job.
type ErrorEvent struct {
	Message string `json:"message" validate:"required"`
}

func (e *LogEvent) EventType() StreamEventType     { return StreamEventLog }
func (e *SuccessEvent) EventType() StreamEventType { return StreamEventSuccess }
func (e *ErrorEvent) EventType() StreamEventType   { return StreamEventError }

func (e *LogEvent) Text() string     { return e.Message }
func (e *SuccessEvent) Text() string { return e.Message }
func (e *ErrorEvent) Text() string   { return e.Message }

// IsTerminal reports whether ev ends an ingestion job.
func IsTerminal(ev StreamEvent) bool {
	t := ev.EventType()
	return t == StreamEventSuccess || t == StreamEventError
}

// ErrUnknownEventType is returned for a stream line with an unrecognized type.
var ErrUnknownEventType = errors.New("unknown stream event type")

type streamEnvelope struct {
	Type    StreamEventType `json:"type"`
	Message string          `json:"message"`
	Ticker  string          `json:"ticker,omitempty"`
	Company string          `json:"company,omitempty"`
	Years   []string        `json:"years,omitempty"`
}

// DecodeStreamEvent decodes and validates a single JSON stream line.
func DecodeStreamEvent(line []byte) (StreamEvent, error) {
	var env streamEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("decode stream event: %w", err)
	}

	var ev StreamEvent
	switch env.Type {
	case StreamEventLog:
		ev = &LogEvent{Message: env.Message}
	case StreamEventSuccess:
		ev = &SuccessEvent{
			Ticker:  env.Ticker,
			Company: env.Company,
			Years:   env.Years,
			Message: env.Message,
		}
	case StreamEventError:
		ev = &ErrorEvent{Message: env.Message}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, env.Type)
	}

	if err := Validate(ev); err != nil {
		return nil, fmt.Errorf("invalid %s event: %w", env.Type, err)
	}
	return ev, nil
}

// EncodeStreamEvent renders ev as a single JSON line without the trailing newline.
func EncodeStreamEvent(ev StreamEvent) ([]byte, error) {
	env := streamEnvelope{Type: ev.EventType(), Message: ev.Text()}
	if s, ok := ev.(*SuccessEvent); ok {
		env.Ticker = s.Ticker
		env.Company = s.Company
		env.Years = s.Years
	}
	return json.Marshal(env)
}

// ConversationEventType represents the type of conversation event.
type ConversationEventType string

const (
	EventSessionCreated ConversationEventType = "session_created"
	EventSessionDeleted ConversationEventType = "session_deleted"
	EventQueryResolved  ConversationEventType = "query_resolved"
	EventQueryFailed    ConversationEventType = "query_failed"
	EventIngestFinished ConversationEventType = "ingest_finished"
)

// ConversationEvent records a state change of the client for external observers.
type ConversationEvent struct {
	ID        string                `json:"id"`
	SessionID string                `json:"session_id,omitempty"`
	Type      ConversationEventType `json:"type"`
	Reason    string                `json:"reason,omitempty"`
	Metadata  map[string]any        `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}
