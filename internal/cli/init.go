// Package cli holds the start-up steps shared by the fintrack binaries
// and the fintrackctl command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

// LoadConfig reads .env files and the environment, then checks the
// result with validate. A nil validate uses Config.Validate.
func LoadConfig(validate func(*config.Config) error) (*config.Config, error) {
	config.LoadDotEnv()
	cfg := config.Load()
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger for component and installs it
// as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{Level: cfg.SlogLevel(), Component: component, Output: os.Stdout})
	log.SetDefault(logger)
	return logger
}

// OpenBackend builds the store selected by cfg. reg may be nil.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config, reg *metrics.Registry) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger, reg).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	if res.Cleanup == nil {
		res.Cleanup = func() error { return nil }
	}
	return res, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
