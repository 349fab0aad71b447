package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/registry"
	"github.com/capitalize-ai/finsight/pkg/metrics"
	"github.com/capitalize-ai/finsight/pkg/tracing"
)

// PendingQuery is a submitted query whose analysis has not resolved yet.
type PendingQuery struct {
	SessionID     string
	Query         string
	UserMessageID string
	Placeholder   model.Message
	NewSession    bool

	request model.AnalyzeRequest
}

// SubmitQuery appends the query and a placeholder answer to the active session
// (creating one if needed), runs the analysis and returns the resolved agent
// message. A failed analysis is reported inside the returned message.
func (s *ConversationService) SubmitQuery(ctx context.Context, text string) (model.Message, error) {
	pending, err := s.StartQuery(ctx, text)
	if err != nil {
		return model.Message{}, err
	}
	return s.ResolveQuery(ctx, pending), nil
}

// StartQuery records the user message and the placeholder agent message and
// persists them. The analysis request is not sent yet.
func (s *ConversationService) StartQuery(ctx context.Context, text string) (*PendingQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	focus := s.registry.Focus()
	now := s.now()

	s.mu.Lock()

	created := false
	if s.indexLocked(s.activeID) < 0 {
		session := model.Session{
			ID:        newID(),
			Title:     text,
			CreatedAt: now,
		}
		s.sessions = append([]model.Session{session}, s.sessions...)
		s.activeID = session.ID
		s.messages = nil
		created = true
		metrics.SessionsTotal.Inc()
	}
	sessionID := s.activeID

	userMsg := model.Message{
		ID:        newID(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: now,
	}
	placeholder := model.Message{
		ID:        newID(),
		Role:      model.RoleAgent,
		Timestamp: now,
		Thinking:  placeholderThinking(focus),
	}

	s.messages = append(s.messages, userMsg, placeholder)
	idx := s.indexLocked(sessionID)
	s.sessions[idx].Messages = append(s.sessions[idx].Messages, userMsg, placeholder)
	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAgent)).Inc()

	s.persistLocked(ctx)

	req := model.AnalyzeRequest{Query: text, Settings: s.settings}
	if focus != "" {
		req.Ticker = &focus
	}
	s.mu.Unlock()

	if created {
		s.logger.WithSession(sessionID).Info("session created")
		s.publish(ctx, &model.ConversationEvent{SessionID: sessionID, Type: model.EventSessionCreated})
	}

	return &PendingQuery{
		SessionID:     sessionID,
		Query:         text,
		UserMessageID: userMsg.ID,
		Placeholder:   placeholder,
		NewSession:    created,
		request:       req,
	}, nil
}

// ResolveQuery sends the analysis request of p and folds the outcome into the
// placeholder of the session that owns it, even if another session became
// active in the meantime.
func (s *ConversationService) ResolveQuery(ctx context.Context, p *PendingQuery) model.Message {
	ctx, span := tracing.Tracer().Start(ctx, "conversation.resolve_query")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", p.SessionID),
		attribute.Bool("query.focused", p.request.Ticker != nil),
	)

	log := s.logger.WithSession(p.SessionID)

	resp, err := s.analyzer.Analyze(ctx, p.request)

	resolved := p.Placeholder
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		log.Warn("analysis failed", zap.Error(err))
		resolved.Content = ErrorMessage
		resolved.Thinking = nil
	} else {
		resolved.Thinking = resp.Thinking
		resolved.Answer = resp.Answer
		span.SetAttributes(attribute.Int("answer.sources", len(resp.Answer.Sources)))
	}

	s.mu.Lock()
	idx := s.indexLocked(p.SessionID)
	if idx >= 0 {
		replaceMessage(s.sessions[idx].Messages, resolved)
	}
	if s.activeID == p.SessionID {
		replaceMessage(s.messages, resolved)
		if resolved.Answer != nil && len(resolved.Answer.Sources) > 0 {
			s.registry.Merge(model.DocumentsFromSources(resolved.Answer.Sources), registry.PlaceBack)
		}
	}
	if idx >= 0 {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	event := &model.ConversationEvent{SessionID: p.SessionID, Type: model.EventQueryResolved}
	if err != nil {
		event.Type = model.EventQueryFailed
		event.Reason = ErrorMessage
	}
	s.publish(ctx, event)

	return resolved
}

// replaceMessage swaps the message with the same id as msg in place.
func replaceMessage(msgs []model.Message, msg model.Message) bool {
	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = msg
			return true
		}
	}
	return false
}

func placeholderThinking(focus string) *model.ThinkingProcess {
	step := model.ThinkingStep{
		ID:       "init",
		Title:    "Initializing Agent",
		Status:   model.StepActive,
		Substeps: []string{},
	}
	if focus != "" {
		step.Title = "Context Locked: " + focus
		step.Description = "Restricting search to selected company..."
	} else {
		step.Description = "Connecting to backend..."
	}
	return &model.ThinkingProcess{Steps: []model.ThinkingStep{step}}
}
