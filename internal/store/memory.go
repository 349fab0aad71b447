package store

import (
	"context"
	"sync"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// MemoryStore keeps the encoded session list in process memory.
// Records still pass through the codec, so it behaves like the durable backends.
type MemoryStore struct {
	data   []byte
	saves  int
	logger *logger.Logger
	mu     sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{logger: log}
}

// Name returns the backend name.
func (m *MemoryStore) Name() string { return "memory" }

// Load decodes the last saved record.
func (m *MemoryStore) Load(ctx context.Context) []model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return DecodeOrEmpty(m.logger, m.Name(), m.data)
}

// Save replaces the record.
func (m *MemoryStore) Save(ctx context.Context, sessions []model.Session) error {
	data, err := Marshal(sessions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.saves++
	m.mu.Unlock()
	return nil
}

// SetRaw replaces the record with arbitrary bytes.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
