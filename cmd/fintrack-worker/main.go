package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	cfg, err := cli.LoadConfig((*config.Config).ValidateWorker)
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, backend.GoogleCredentials(cfg))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// An empty local store starts as a copy of the spreadsheet.
	if err := repo.Bootstrap(ctx, sheetsClient, sheets.AllSheets()); err != nil {
		logger.Error("Failed to bootstrap local store from Google Sheets", log.FieldError, err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize)
	logger.Info("Performing startup sync check")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	poller := worker.NewPoller(syncWorker, worker.PollerConfig{Interval: cfg.SyncInterval})
	if err := poller.Start(ctx); err != nil {
		logger.Error("Failed to start poller", log.FieldError, err)
		os.Exit(1)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeRowSync(ctx, syncWorker.HandleSyncMessage)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := poller.Stop(shutdownCtx); err != nil {
		logger.Warn("Poller shutdown incomplete", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
