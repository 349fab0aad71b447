// Package store persists the chat session list.
//
// Every backend stores the whole list as one JSON record and replaces it
// wholesale on each save. Loading never fails the caller: a missing record
// is an empty history and a corrupt one is logged and discarded.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// Store is the durable home of the session list.
type Store interface {
	// Load returns the stored sessions, or an empty list when nothing usable is stored.
	Load(ctx context.Context) []model.Session

	// Save overwrites the stored record with sessions.
	Save(ctx context.Context, sessions []model.Session) error

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Marshal encodes the session list. A nil list is stored as an empty array.
func Marshal(sessions []model.Session) ([]byte, error) {
	if sessions == nil {
		sessions = []model.Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("marshal sessions: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a stored session list.
func Unmarshal(data []byte) ([]model.Session, error) {
	var sessions []model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("parse sessions: %w", err)
	}
	for i, s := range sessions {
		if s.ID == "" {
			return nil, fmt.Errorf("parse sessions: entry %d has no id", i)
		}
	}
	return sessions, nil
}

// DecodeOrEmpty decodes data and falls back to an empty list on corruption.
func DecodeOrEmpty(log *logger.Logger, backend string, data []byte) []model.Session {
	if len(data) == 0 {
		return []model.Session{}
	}
	sessions, err := Unmarshal(data)
	if err != nil {
		log.Warn("discarding corrupt session history",
			zap.String("backend", backend),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		return []model.Session{}
	}
	if sessions == nil {
		return []model.Session{}
	}
	return sessions
}
