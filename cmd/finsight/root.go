package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/capitalize-ai/finsight/internal/config"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

var (
	cfg      *config.Config
	apiURL   string
	backend  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "FinSight - ask questions about SEC filings",
	Long: `FinSight is a client for the FinSight filings agent. It keeps a local
history of chat sessions, ingests annual filings for new tickers and
serves a small HTTP API for the browser front end.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if backend != "" {
			cfg.StoreBackend = backend
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return nil
	},
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "base URL of the FinSight backend (overrides FINSIGHT_API_URL)")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "", "history backend: file, redis, nats or memory (overrides STORE_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// newLogger builds the process logger. Interactive commands log to a file so
// output does not interleave with what the user reads.
func newLogger(toFile bool) (*logger.Logger, error) {
	if toFile {
		return logger.NewFile(cfg.LogLevel, cfg.LogFile), nil
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
