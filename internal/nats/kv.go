package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/store"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

const (
	// DefaultBucket is the key-value bucket holding chat history.
	DefaultBucket = "FINSIGHT"

	// SessionsKey is the key of the session list inside the bucket.
	SessionsKey = "sessions"
)

// KVStore keeps the session list under one key of a JetStream key-value bucket.
type KVStore struct {
	kv     jetstream.KeyValue
	logger *logger.Logger
}

// NewKVStore opens (or creates) bucket on client and returns a store over it.
func NewKVStore(ctx context.Context, client *Client, bucket string, log *logger.Logger) (*KVStore, error) {
	if bucket == "" {
		bucket = DefaultBucket
	}
	kv, err := client.KeyValue(ctx, bucket)
	if err != nil {
		return nil, err
	}
	return NewKVStoreFromBucket(kv, log), nil
}

// NewKVStoreFromBucket wraps an opened bucket.
func NewKVStoreFromBucket(kv jetstream.KeyValue, log *logger.Logger) *KVStore {
	return &KVStore{kv: kv, logger: log}
}

// Name returns the backend name.
func (s *KVStore) Name() string { return "nats" }

// Load reads the session list from the bucket.
func (s *KVStore) Load(ctx context.Context) []model.Session {
	entry, err := s.kv.Get(ctx, SessionsKey)
	if err != nil {
		if !errors.Is(err, jetstream.ErrKeyNotFound) {
			s.logger.Warn("failed to read session history", zap.String("key", SessionsKey), zap.Error(err))
		}
		return []model.Session{}
	}
	return store.DecodeOrEmpty(s.logger, s.Name(), entry.Value())
}

// Save replaces the stored session list.
func (s *KVStore) Save(ctx context.Context, sessions []model.Session) error {
	data, err := store.Marshal(sessions)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, SessionsKey, data); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}
	return nil
}

var _ store.Store = (*KVStore)(nil)
