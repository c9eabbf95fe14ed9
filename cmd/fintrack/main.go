package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
)

func main() {
	cfg, err := cli.LoadConfig(nil)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	reg := metrics.New()
	res, err := cli.OpenBackend(ctx, logger, cfg, reg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	janitor := cache.NewJanitor()
	if cached, ok := res.Backend.(*backend.CachedBackend); ok {
		janitor.Register(cached.Cache())
		janitor.Start(cfg.SheetsCacheTTL)
	}
	defer janitor.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, res.Backend, cfg.People,
		apphttp.WithLogger(logger),
		apphttp.WithMetrics(reg),
	)
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend, "people", cfg.People)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
