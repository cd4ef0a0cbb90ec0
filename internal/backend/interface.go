package backend

import (
	"context"

	"kalanmoney/internal/repository"
	"kalanmoney/internal/services"
)

type CleanupFunc func() error

// BackendResult bundles the repositories of one storage backend with the
// optional event publisher and the function that releases them.
type BackendResult struct {
	Accounts   repository.AccountQueries
	Categories repository.CategoryQueries
	Commands   repository.AccountCommands
	// Publisher is nil when AMQP is not configured or unreachable.
	Publisher services.EventPublisher
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// Deps returns the use-case dependencies backed by this result.
func (r *BackendResult) Deps() services.Deps {
	return services.Deps{
		Accounts:   r.Accounts,
		Categories: r.Categories,
		Commands:   r.Commands,
		Publisher:  r.Publisher,
	}
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	SeedFile     string

	// Publisher settings; an empty URL means no publisher.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
