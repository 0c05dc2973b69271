// Package cli consolidates the initialization shared by cmd/butce,
// cmd/butce-worker and cmd/installment-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"butce/internal/backend"
	"butce/internal/config"
	applog "butce/internal/log"
)

// Bootstrap loads .env for local development, installs a component-tagged
// logger as the process default and validates configuration. It exits the
// process when the configuration is invalid.
func Bootstrap(component string) (*applog.Logger, *config.Config) {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: component})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return logger, cfg
}

// RequirePersistentBackend rejects the memory backend for binaries whose
// state must outlive the process. Exits on violation.
func RequirePersistentBackend(logger *applog.Logger, cfg *config.Config) {
	if cfg.DataBackend == "memory" {
		logger.Error("This binary needs a persistent backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}
}

// InitBackend builds the configured store plus, when withDispatcher is set,
// the AMQP refresh publisher. Exits on failure.
func InitBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config, withDispatcher bool) *backend.Result {
	bc := backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		PostgresDSN:  cfg.PostgresDSN,
		SQLiteDBPath: cfg.SQLiteDBPath,
	}
	if withDispatcher {
		bc.AMQPURL = cfg.AMQPURL
		bc.AMQPExchange = cfg.AMQPExchange
		bc.AMQPQueue = cfg.AMQPQueue
	}

	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bc)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
