package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/capitalize-ai/finsight/internal/model"
)

const (
	// StreamName is the name of the client event stream.
	StreamName = "FINSIGHT_EVENTS"

	// SubjectPrefix is the prefix for all client subjects.
	SubjectPrefix = "finsight"
)

// Publisher is the part of JetStream the event mirror needs.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher mirrors ingestion and conversation events to JetStream.
type EventPublisher struct {
	js Publisher
}

// NewEventPublisher creates a publisher on js.
func NewEventPublisher(js Publisher) *EventPublisher {
	return &EventPublisher{js: js}
}

// EnsureStream ensures the event stream exists with proper configuration.
func EnsureStream(ctx context.Context, client *Client) error {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "FinSight ingestion and conversation events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// IngestSubject returns the subject for an ingestion event of ticker.
func IngestSubject(ticker string, eventType model.StreamEventType) string {
	return fmt.Sprintf("%s.ingest.%s.%s", SubjectPrefix, token(ticker), eventType)
}

// SessionSubject returns the subject for a conversation event.
func SessionSubject(sessionID string, eventType model.ConversationEventType) string {
	if sessionID == "" {
		sessionID = "none"
	}
	return fmt.Sprintf("%s.session.%s.%s", SubjectPrefix, token(sessionID), eventType)
}

// PublishIngest publishes one ingestion stream event.
func (p *EventPublisher) PublishIngest(ctx context.Context, ticker string, ev model.StreamEvent) error {
	data, err := model.EncodeStreamEvent(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal ingest event: %w", err)
	}

	if _, err := p.js.Publish(ctx, IngestSubject(ticker, ev.EventType()), data); err != nil {
		return fmt.Errorf("failed to publish ingest event: %w", err)
	}
	return nil
}

// PublishConversation publishes a conversation state change.
func (p *EventPublisher) PublishConversation(ctx context.Context, event *model.ConversationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, SessionSubject(event.SessionID, event.Type), data, jetstream.WithMsgID(event.ID)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// token makes s safe to use as a single subject token.
func token(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
