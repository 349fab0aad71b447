package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// SessionsFile is the file name of the session list inside the data directory.
const SessionsFile = "sessions.json"

// FileStore keeps the session list in a single JSON file.
type FileStore struct {
	path   string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file store rooted at dir, creating dir if needed.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{
		path:   filepath.Join(dir, SessionsFile),
		logger: log,
	}, nil
}

// Name returns the backend name.
func (f *FileStore) Name() string { return "file" }

// Path returns the location of the sessions file.
func (f *FileStore) Path() string { return f.path }

// Load reads the session list from disk.
func (f *FileStore) Load(ctx context.Context) []model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("failed to read session history", zap.String("path", f.path), zap.Error(err))
		}
		return []model.Session{}
	}
	return DecodeOrEmpty(f.logger, f.Name(), data)
}

// Save replaces the sessions file. The write goes through a temp file and a
// rename so a crash never leaves a half-written record behind.
func (f *FileStore) Save(ctx context.Context, sessions []model.Session) error {
	data, err := Marshal(sessions)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), SessionsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace sessions file: %w", err)
	}
	return nil
}
