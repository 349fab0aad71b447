// Package settings persists the user's analysis settings between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// Store reads and writes AppSettings.
type Store interface {
	Load() model.AppSettings
	Save(s model.AppSettings) error
}

// FileStore keeps settings in a YAML file.
type FileStore struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewFileStore creates a settings store backed by path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log}
}

// Path returns the settings file location.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the settings file. Missing keys keep their defaults; a missing,
// unreadable or invalid file yields DefaultSettings.
func (f *FileStore) Load() model.AppSettings {
	f.mu.Lock()
	defer f.mu.Unlock()

	defaults := model.DefaultSettings()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("failed to read settings", zap.String("path", f.path), zap.Error(err))
		}
		return defaults
	}

	s := defaults
	if err := yaml.Unmarshal(data, &s); err != nil {
		f.logger.Warn("ignoring unparsable settings file", zap.String("path", f.path), zap.Error(err))
		return defaults
	}
	if err := s.Validate(); err != nil {
		f.logger.Warn("ignoring invalid settings", zap.String("path", f.path), zap.Error(err))
		return defaults
	}
	return s
}

// Save validates s and writes it to the settings file.
func (f *FileStore) Save(s model.AppSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// MemoryStore holds settings in memory.
type MemoryStore struct {
	settings model.AppSettings
	mu       sync.Mutex
}

// NewMemoryStore starts from DefaultSettings.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: model.DefaultSettings()}
}

func (m *MemoryStore) Load() model.AppSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *MemoryStore) Save(s model.AppSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
	return nil
}
