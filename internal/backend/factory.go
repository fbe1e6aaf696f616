package backend

import (
	"context"
	"fmt"

	"estoque/internal/log"
	"estoque/internal/storage"
	"estoque/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLBackend(ctx, storage.Options{
			Driver: storage.DriverSQLite,
			DSN:    storage.SQLiteDSN(config.SQLiteDBPath),
		}, "db_path", config.SQLiteDBPath)
	case PostgresBackend:
		return f.createSQLBackend(ctx, storage.Options{
			Driver:       storage.DriverPostgres,
			DSN:          config.DatabaseURL,
			MaxOpenConns: config.DBMaxOpenConns,
			MaxIdleConns: config.DBMaxIdleConns,
			MaxIdleTime:  config.DBMaxIdleTime,
		}, "max_open_conns", config.DBMaxOpenConns)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLBackend(ctx context.Context, opts storage.Options, args ...any) (*BackendResult, error) {
	db, err := storage.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", opts.Driver, err)
	}
	repo := storage.NewRepository(db)

	f.logger.InfoContext(ctx, "Initialized SQL backend", append([]any{"driver", opts.Driver}, args...)...)

	return &BackendResult{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized memory backend", "seed_file", config.SeedFile)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
