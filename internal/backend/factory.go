package backend

import (
	"context"
	"errors"
	"fmt"

	"kalanmoney/internal/amqp"
	"kalanmoney/internal/config"
	"kalanmoney/internal/log"
	"kalanmoney/internal/repository/memory"
	"kalanmoney/internal/storage"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}
	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedFile:     appConfig.SeedFile,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	f.attachPublisher(ctx, config, result)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if config.SQLiteDBPath == "" {
		return nil, errors.New("SQLite database path is required for sqlite backend")
	}
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Accounts:   repo,
		Categories: repo,
		Commands:   repo,
		Ready:      repo.Ping,
		Cleanup:    repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)
	return &BackendResult{
		Accounts:   store,
		Categories: store,
		Commands:   store,
		Ready:      func(context.Context) error { return nil },
		Cleanup:    func() error { return nil },
	}, nil
}

// attachPublisher connects to AMQP when configured. A broker that cannot be
// reached only disables event publishing.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	if config.AMQPURL == "" {
		return
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	storageCleanup := result.Cleanup
	result.Cleanup = func() error {
		return errors.Join(client.Close(), storageCleanup())
	}
}
