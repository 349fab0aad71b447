// Package service provides the conversation logic of the FinSight client.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/registry"
	"github.com/capitalize-ai/finsight/internal/settings"
	"github.com/capitalize-ai/finsight/internal/store"
	"github.com/capitalize-ai/finsight/pkg/logger"
	"github.com/capitalize-ai/finsight/pkg/metrics"
)

// ErrorMessage replaces the content of a placeholder whose analysis failed.
const ErrorMessage = "Error connecting to agent."

var (
	// ErrEmptyQuery is returned when a query has no text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrSessionNotFound is returned when a session id is unknown.
	ErrSessionNotFound = errors.New("session not found")
)

// Analyzer answers a query.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.AnalyzeResponse, error)
}

// Ingester runs a ticker ingestion job.
type Ingester interface {
	AddTicker(ctx context.Context, ticker string, depth int, onEvent func(model.StreamEvent)) (*model.SuccessEvent, error)
}

// EventPublisher mirrors client events to an external bus.
type EventPublisher interface {
	PublishIngest(ctx context.Context, ticker string, ev model.StreamEvent) error
	PublishConversation(ctx context.Context, event *model.ConversationEvent) error
}

// Dependencies are the collaborators of a ConversationService.
// Store, Analyzer and Ingester are required.
type Dependencies struct {
	Store     store.Store
	Analyzer  Analyzer
	Ingester  Ingester
	Settings  settings.Store
	Publisher EventPublisher
}

// ConversationService owns the session list, the active session and its live
// message buffer, and the document registry. Every mutation of the session
// list is written through to the store before the lock is released.
type ConversationService struct {
	store     store.Store
	analyzer  Analyzer
	ingester  Ingester
	prefs     settings.Store
	publisher EventPublisher
	registry  *registry.Registry
	logger    *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions []model.Session
	activeID string
	messages []model.Message
	settings model.AppSettings
}

// NewConversationService loads the stored history and settings.
func NewConversationService(ctx context.Context, deps Dependencies, log *logger.Logger) *ConversationService {
	prefs := deps.Settings
	if prefs == nil {
		prefs = settings.NewMemoryStore()
	}

	s := &ConversationService{
		store:     deps.Store,
		analyzer:  deps.Analyzer,
		ingester:  deps.Ingester,
		prefs:     prefs,
		publisher: deps.Publisher,
		registry:  registry.New(),
		logger:    log.Named("conversation"),
		now:       time.Now,
		sessions:  deps.Store.Load(ctx),
		settings:  prefs.Load(),
	}

	s.logger.Info("session history loaded",
		zap.String("backend", deps.Store.Name()),
		zap.Int("sessions", len(s.sessions)),
	)
	return s
}

// NewChat deselects the active session and clears the live buffer, the focus
// and the document registry. Stored sessions are untouched.
func (s *ConversationService) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *ConversationService) resetLocked() {
	s.activeID = ""
	s.messages = nil
	s.registry.Clear()
	s.registry.SelectFocus("")
}

// LoadSession activates the session with id and rebuilds the registry from the
// sources of its most recent answer. An unknown id leaves everything as it is
// and returns false.
func (s *ConversationService) LoadSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		s.logger.Debug("ignoring load of unknown session", zap.String("session_id", id))
		return false
	}

	session := s.sessions[idx]
	s.activeID = session.ID
	s.messages = model.CloneMessages(session.Messages)

	var docs []model.ActiveDocument
	if answer := session.LastAnswer(); answer != nil {
		docs = model.DocumentsFromSources(answer.Sources)
	}
	s.registry.Replace(docs)

	s.logger.WithSession(session.ID).Debug("session loaded", zap.Int("messages", len(s.messages)))
	return true
}

// DeleteSession removes the session with id. Deleting the active session
// behaves like NewChat.
func (s *ConversationService) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrSessionNotFound
	}

	s.sessions = append(s.sessions[:idx:idx], s.sessions[idx+1:]...)
	if s.activeID == id {
		s.resetLocked()
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, &model.ConversationEvent{SessionID: id, Type: model.EventSessionDeleted})
	return nil
}

// Sessions returns summaries of every stored session, newest first.
func (s *ConversationService) Sessions() []model.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.SessionSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, model.SessionSummary{
			ID:           sess.ID,
			Title:        sess.Title,
			CreatedAt:    sess.CreatedAt,
			Date:         sess.CreatedAt.Local().Format("Jan 2, 2006"),
			MessageCount: len(sess.Messages),
			Active:       sess.ID == s.activeID,
		})
	}
	return out
}

// Session returns a copy of the stored session with id.
func (s *ConversationService) Session(id string) (model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

// ActiveSessionID returns the id of the active session, or "" when none is.
func (s *ConversationService) ActiveSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Messages returns a snapshot of the live message buffer.
func (s *ConversationService) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneMessages(s.messages)
}

// Documents returns the active documents.
func (s *ConversationService) Documents() []model.ActiveDocument {
	return s.registry.Documents()
}

// Focus returns the ticker the next query is scoped to.
func (s *ConversationService) Focus() string {
	return s.registry.Focus()
}

// SelectFocus scopes the next queries to ticker. Empty clears the focus.
func (s *ConversationService) SelectFocus(ticker string) {
	s.registry.SelectFocus(ticker)
}

// Settings returns the current analysis settings.
func (s *ConversationService) Settings() model.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings validates and stores new analysis settings.
func (s *ConversationService) UpdateSettings(next model.AppSettings) error {
	if err := next.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.prefs.Save(next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

func (s *ConversationService) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the whole session list. Failures are logged; the
// in-memory state stays authoritative for the rest of the run.
func (s *ConversationService) persistLocked(ctx context.Context) {
	snapshot := make([]model.Session, len(s.sessions))
	for i := range s.sessions {
		snapshot[i] = s.sessions[i].Clone()
	}

	err := s.store.Save(context.WithoutCancel(ctx), snapshot)
	metrics.RecordStoreSave(s.store.Name(), err)
	if err != nil {
		s.logger.Error("failed to persist sessions",
			zap.String("backend", s.store.Name()),
			zap.Error(err),
		)
	}
}

func (s *ConversationService) publish(ctx context.Context, event *model.ConversationEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = newID()
	event.CreatedAt = s.now()
	if err := s.publisher.PublishConversation(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish conversation event",
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
