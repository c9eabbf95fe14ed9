package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/sheets"
	"fintrack/internal/storage"
)

// Publisher announces stored rows that need mirroring.
type Publisher interface {
	PublishRowSync(ctx context.Context, sheet string, position int, version int64) error
}

// SQLiteAdapter makes the SQLite store look like a spreadsheet workbook.
// Writes land in SQLite first and are then announced on the queue; a
// failed publish leaves the row pending for the worker's sweep.
type SQLiteAdapter struct {
	storage   *storage.SQLiteRepository
	publisher Publisher
}

var (
	_ sheets.Workbook = (*SQLiteAdapter)(nil)
	_ sheets.Pinger   = (*SQLiteAdapter)(nil)
)

// NewSQLiteAdapter wires the repository to a publisher. A nil publisher
// disables announcements.
func NewSQLiteAdapter(storage *storage.SQLiteRepository, publisher Publisher) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage, publisher: publisher}
}

func (a *SQLiteAdapter) ReadTable(ctx context.Context, sheet string) (sheets.Table, error) {
	return a.storage.ReadTable(ctx, sheet)
}

func (a *SQLiteAdapter) AppendRows(ctx context.Context, sheet string, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	recs, err := a.storage.InsertRows(ctx, sheet, rows)
	if err != nil {
		return "", err
	}
	for _, rec := range recs {
		a.publish(ctx, rec)
	}
	first, last := recs[0].SheetRowNumber(), recs[len(recs)-1].SheetRowNumber()
	return fmt.Sprintf("sqlite:%s!%d:%d", sheet, first, last), nil
}

func (a *SQLiteAdapter) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	rec, err := a.storage.SetCell(ctx, sheet, row, col, value)
	if err != nil {
		return err
	}
	a.publish(ctx, rec)
	return nil
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

func (a *SQLiteAdapter) publish(ctx context.Context, rec storage.RowRecord) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishRowSync(ctx, rec.Sheet, rec.Position, rec.Version); err != nil {
		slog.WarnContext(ctx, "Failed to publish row sync, left for periodic sync",
			"sheet", rec.Sheet,
			"position", rec.Position,
			"version", rec.Version,
			"error", err)
	}
}
