package backend

import (
	"context"
	"fmt"
	"log/slog"

	"butce/internal/amqp"
	"butce/internal/notify"
	"butce/internal/storage"
	"butce/internal/store"
	"butce/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres repository: %w", err)
		}
		return f.withDispatcher(config, repo, "postgres")
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return f.withDispatcher(config, repo, "sqlite")
	default:
		f.logger.Info("Initialized memory backend")
		return &Result{
			Store:      memory.New(),
			Dispatcher: notify.Nop{},
			Cleanup:    func() error { return nil },
		}, nil
	}
}

// withDispatcher attaches the AMQP dispatcher when a broker URL is
// configured; a missing or unreachable broker downgrades to no-op delivery
// rather than failing startup.
func (f *DefaultFactory) withDispatcher(config Config, st store.Store, kind string) (*Result, error) {
	var (
		dispatcher notify.Dispatcher = notify.Nop{}
		amqpClient *amqp.Client
	)

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without refresh signals", "error", err)
		} else {
			dispatcher = client
			amqpClient = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Backend ready", "type", kind, "amqp_enabled", amqpClient != nil)

	return &Result{
		Store:      st,
		Dispatcher: dispatcher,
		Cleanup: func() error {
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					f.logger.Warn("AMQP close failed", "error", err)
				}
			}
			return st.Close()
		},
	}, nil
}
