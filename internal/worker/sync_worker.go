package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/metrics"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// RowStore is the local side of the mirror.
type RowStore interface {
	GetRow(ctx context.Context, sheet string, position int) (storage.RowRecord, error)
	PendingRows(ctx context.Context, limit int) ([]storage.RowRecord, error)
	MarkSynced(ctx context.Context, sheet string, position int, version int64) error
	MarkSyncError(ctx context.Context, sheet string, position int, cause error) error
}

// SyncWorker copies rows from SQLite to Google Sheets. Each row is
// written whole at its own position, so replays are harmless.
type SyncWorker struct {
	store     RowStore
	sheets    sheets.RowWriter
	batchSize int
	metrics   *metrics.Registry
}

func NewSyncWorker(store RowStore, writer sheets.RowWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{store: store, sheets: writer, batchSize: batchSize}
}

// WithMetrics records sync outcomes on reg.
func (w *SyncWorker) WithMetrics(reg *metrics.Registry) *SyncWorker {
	w.metrics = reg
	return w
}

// HandleSyncMessage processes a single row sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RowSyncMessage) error {
	rec, err := w.store.GetRow(ctx, msg.Sheet, msg.Position)
	if errors.Is(err, storage.ErrRowNotFound) {
		slog.WarnContext(ctx, "Row for sync message not found, dropping",
			"sheet", msg.Sheet, "position", msg.Position)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get row from storage: %w", err)
	}
	if rec.SyncStatus == storage.StatusSynced && rec.Version >= msg.Version {
		slog.DebugContext(ctx, "Row already synced",
			"sheet", rec.Sheet, "position", rec.Position, "version", rec.Version)
		return nil
	}
	return w.syncRow(ctx, rec)
}

// ProcessPending syncs one batch of rows that are still pending. This is
// the backup path for lost messages. It returns how many rows synced.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processBatch(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch of pending rows at startup to
// recover from worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

func (w *SyncWorker) processBatch(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.PendingRows(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending rows: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	slog.InfoContext(ctx, "Processing pending rows", "count", len(pending))

	synced := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncRow(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync row",
				"sheet", rec.Sheet, "position", rec.Position, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncRow(ctx context.Context, rec storage.RowRecord) error {
	row := rec.SheetRowNumber()
	err := w.sheets.WriteRow(ctx, rec.Sheet, row, rec.Cells)
	w.metrics.RowSynced(err)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, rec.Sheet, rec.Position, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"sheet", rec.Sheet, "position", rec.Position, "error", markErr)
		}
		return fmt.Errorf("write %s row %d: %w", rec.Sheet, row, err)
	}
	if err := w.store.MarkSynced(ctx, rec.Sheet, rec.Position, rec.Version); err != nil {
		// The write went through; the row will be rewritten once more.
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"sheet", rec.Sheet, "position", rec.Position, "error", err)
	}
	slog.InfoContext(ctx, "Synced row",
		"sheet", rec.Sheet,
		"row", row,
		"version", rec.Version)
	return nil
}
