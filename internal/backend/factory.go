package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/adapters"
	"fintrack/internal/amqp"
	"fintrack/internal/metrics"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

type DefaultFactory struct {
	logger  *slog.Logger
	metrics *metrics.Registry
}

// NewFactory creates a backend factory. reg may be nil.
func NewFactory(logger *slog.Logger, reg *metrics.Registry) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger, metrics: reg}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateBackend builds the configured store, wrapped with metrics and,
// when CacheTTL is set, the read cache.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *BackendResult
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		res, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	res.Backend = NewInstrumentedBackend(res.Backend, f.metrics)
	if config.CacheTTL > 0 {
		size := config.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		res.Backend = NewCachedBackend(res.Backend, size, config.CacheTTL, f.metrics)
		f.logger.Info("Read cache enabled", "ttl", config.CacheTTL, "size", size)
	}
	return res, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional; without it the worker's sweep picks rows up.
	var client *amqp.Client
	var publisher adapters.Publisher
	if config.AMQPURL != "" {
		client, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync messages", "error", err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", client != nil)

	return &BackendResult{
		Backend: adapters.NewSQLiteAdapter(repo, publisher),
		Cleanup: func() error {
			if client != nil {
				client.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, config.GoogleCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend")
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = "data"
	}
	store, err := memory.NewFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "data_directory", dir)
	return &BackendResult{Backend: store}, nil
}
