package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/capitalize-ai/finsight/internal/analysis"
	"github.com/capitalize-ai/finsight/internal/config"
	"github.com/capitalize-ai/finsight/internal/handler"
	"github.com/capitalize-ai/finsight/internal/ingest"
	natsclient "github.com/capitalize-ai/finsight/internal/nats"
	"github.com/capitalize-ai/finsight/internal/service"
	"github.com/capitalize-ai/finsight/internal/settings"
	"github.com/capitalize-ai/finsight/internal/store"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// app holds the wired service and everything that must be released with it.
type app struct {
	svc    *service.ConversationService
	log    *logger.Logger
	checks map[string]handler.ReadinessCheck

	closers []func()
}

// newApp connects the configured backends and builds the conversation service.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		log:    log,
		checks: make(map[string]handler.ReadinessCheck),
	}

	var nc *natsclient.Client
	if cfg.StoreBackend == config.StoreNATS || cfg.EventsEnabled {
		var err error
		nc, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.closers = append(a.closers, nc.Close)
		a.checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}

	st, err := a.openStore(ctx, cfg, nc)
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher service.EventPublisher
	if cfg.EventsEnabled {
		if err := natsclient.EnsureStream(ctx, nc); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		publisher = natsclient.NewEventPublisher(nc.JetStream())
	}

	a.svc = service.NewConversationService(ctx, service.Dependencies{
		Store:     st,
		Analyzer:  analysis.NewClient(cfg.APIURL, cfg.HTTPTimeout, log.Named("analysis")),
		Ingester:  ingest.NewClient(cfg.APIURL, &http.Client{}, log.Named("ingest")),
		Settings:  settings.NewFileStore(cfg.SettingsFile, log.Named("settings")),
		Publisher: publisher,
	}, log)

	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg *config.Config, nc *natsclient.Client) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreFile, "":
		fs, err := store.NewFileStore(cfg.DataDir, a.log.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("failed to open history file: %w", err)
		}
		return fs, nil

	case config.StoreRedis:
		rs, err := store.NewRedisStore(store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		}, a.log.Named("store"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rs.Close() })
		a.checks["redis"] = rs.Ping
		return rs, nil

	case config.StoreNATS:
		kv, err := natsclient.NewKVStore(ctx, nc, cfg.NATSBucket, a.log.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("failed to open key-value bucket: %w", err)
		}
		return kv, nil

	case config.StoreMemory:
		return store.NewMemoryStore(a.log.Named("store")), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases backends in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.log.Sync()
}
