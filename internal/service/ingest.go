package service

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/ingest"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/registry"
	"github.com/capitalize-ai/finsight/pkg/metrics"
	"github.com/capitalize-ai/finsight/pkg/tracing"
)

// User-visible ingestion failures.
const (
	ingestFailedMessage     = "Ingestion failed."
	ingestIncompleteMessage = "Ingestion ended without a result."
	ingestCanceledMessage   = "Ingestion canceled."
)

// IngestOutcome is the terminal result of an ingestion job.
type IngestOutcome struct {
	State     ingest.State           `json:"state"`
	Message   string                 `json:"message"`
	Documents []model.ActiveDocument `json:"documents,omitempty"`
}

// AddTicker ingests the filings of ticker, forwarding each stream event to
// onEvent in receipt order. On success the reported years are merged into the
// registry as idle 10-K documents ahead of the existing ones.
func (s *ConversationService) AddTicker(ctx context.Context, ticker string, depth int, onEvent func(model.StreamEvent)) IngestOutcome {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	ctx, span := tracing.Tracer().Start(ctx, "conversation.add_ticker")
	defer span.End()
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("depth", depth))

	log := s.logger.With(zap.String("ticker", ticker))
	log.Info("ingestion started", zap.Int("depth", depth))

	success, err := s.ingester.AddTicker(ctx, ticker, depth, func(ev model.StreamEvent) {
		if s.publisher != nil {
			if perr := s.publisher.PublishIngest(context.WithoutCancel(ctx), ticker, ev); perr != nil {
				log.Warn("failed to publish ingest event", zap.Error(perr))
			}
		}
		if onEvent != nil {
			onEvent(ev)
		}
	})

	if err == nil && success == nil {
		err = ingest.ErrIncompleteStream
	}

	state := ingest.StateOf(err)
	metrics.IngestOutcomes.WithLabelValues(string(state)).Inc()

	outcome := IngestOutcome{State: state}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ingestion failed")
		log.Warn("ingestion failed", zap.Error(err))
		outcome.Message = ingestFailureMessage(err)
	} else {
		docs := model.DocumentsFromIngestion(success)
		s.registry.Merge(docs, registry.PlaceFront)
		outcome.Message = success.Message
		outcome.Documents = docs
		log.Info("ingestion finished", zap.Strings("years", success.Years))
	}

	s.publish(ctx, &model.ConversationEvent{
		SessionID: s.ActiveSessionID(),
		Type:      model.EventIngestFinished,
		Reason:    outcome.Message,
		Metadata:  map[string]any{"ticker": ticker, "state": string(state)},
	})

	return outcome
}

// ingestFailureMessage keeps transport details out of what the user sees.
// A backend error event carries a message meant for the user.
func ingestFailureMessage(err error) string {
	var jobErr *ingest.JobError
	switch {
	case errors.As(err, &jobErr):
		return jobErr.Message
	case errors.Is(err, ingest.ErrIncompleteStream):
		return ingestIncompleteMessage
	case errors.Is(err, context.Canceled):
		return ingestCanceledMessage
	default:
		return ingestFailedMessage
	}
}
