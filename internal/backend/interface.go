// Package backend constructs the storage and messaging stack from
// configuration.
package backend

import (
	"context"

	"butce/internal/notify"
	"butce/internal/store"
)

// CleanupFunc releases the resources a backend holds.
type CleanupFunc func() error

// Result bundles the constructed store, the refresh dispatcher, and the
// cleanup function.
type Result struct {
	Store      store.Store
	Dispatcher notify.Dispatcher
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds the backend selection and connection settings.
type Config struct {
	Type Type

	PostgresDSN  string
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type Type string

const (
	PostgresBackend Type = "postgres"
	SQLiteBackend   Type = "sqlite"
	MemoryBackend   Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case PostgresBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
