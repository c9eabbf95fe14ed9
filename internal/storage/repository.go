package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/sheets"

	_ "modernc.org/sqlite"
)

// HeaderPosition identifies the header row in sync bookkeeping.
const HeaderPosition = -1

// Sync states of a stored row.
const (
	StatusPending = "pending"
	StatusSynced  = "synced"
	StatusError   = "error"
)

var ErrRowNotFound = errors.New("row not found")

// RowRecord is one stored row with its sync bookkeeping. Position is the
// 0-based data row position, or HeaderPosition for the header.
type RowRecord struct {
	Sheet      string
	Position   int
	Version    int64
	Cells      []string
	SyncStatus string
}

// SheetRowNumber is the 1-based spreadsheet row of the record.
func (r RowRecord) SheetRowNumber() int {
	if r.Position == HeaderPosition {
		return sheets.HeaderRow
	}
	return sheets.RowNumber(r.Position)
}

// SQLiteRepository stores every sheet as JSON-encoded rows keyed by
// (sheet, position). Each write bumps the row version and marks it
// pending until the mirror confirms it.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{db: db, queries: New(db)}
	if err := repo.seedHeaders(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) seedHeaders(ctx context.Context) error {
	for _, name := range sheets.AllSheets() {
		enc, err := encodeCells(sheets.Columns(name))
		if err != nil {
			return err
		}
		if err := r.queries.SeedHeader(ctx, name, enc); err != nil {
			return fmt.Errorf("seed header %s: %w", name, err)
		}
	}
	return nil
}

// ReadTable returns the stored content of sheet. Gaps in positions come
// back as empty rows so positions stay aligned with the spreadsheet.
func (r *SQLiteRepository) ReadTable(ctx context.Context, sheet string) (sheets.Table, error) {
	hdr, err := r.queries.GetHeader(ctx, sheet)
	if errors.Is(err, sql.ErrNoRows) {
		return sheets.Table{}, fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	if err != nil {
		return sheets.Table{}, fmt.Errorf("get header %s: %w", sheet, err)
	}
	t := sheets.Table{Name: sheet}
	if t.Header, err = decodeCells(hdr.Header); err != nil {
		return sheets.Table{}, err
	}
	rows, err := r.queries.ListRows(ctx, sheet)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("list rows %s: %w", sheet, err)
	}
	for _, row := range rows {
		cells, err := decodeCells(row.Cells)
		if err != nil {
			return sheets.Table{}, err
		}
		t.SetRow(sheets.RowNumber(int(row.Position)), cells)
	}
	return t, nil
}

// InsertRows appends rows after the last stored position of sheet in a
// single transaction and returns the pending records.
func (r *SQLiteRepository) InsertRows(ctx context.Context, sheet string, rows [][]string) ([]RowRecord, error) {
	if _, err := r.queries.GetHeader(ctx, sheet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
		}
		return nil, fmt.Errorf("get header %s: %w", sheet, err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	next, err := q.NextPosition(ctx, sheet)
	if err != nil {
		return nil, fmt.Errorf("next position %s: %w", sheet, err)
	}
	out := make([]RowRecord, 0, len(rows))
	for i, cells := range rows {
		enc, err := encodeCells(cells)
		if err != nil {
			return nil, err
		}
		pos := next + int64(i)
		if err := q.InsertRow(ctx, sheet, pos, enc, StatusPending); err != nil {
			return nil, fmt.Errorf("insert row %s/%d: %w", sheet, pos, err)
		}
		out = append(out, RowRecord{Sheet: sheet, Position: int(pos), Version: 1, Cells: cells, SyncStatus: StatusPending})
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// SetCell overwrites one cell at the 1-based row and col, creating the
// row or widening it as needed. Row 1 updates the header.
func (r *SQLiteRepository) SetCell(ctx context.Context, sheet string, row, col int, value string) (RowRecord, error) {
	if row < 1 || col < 1 {
		return RowRecord{}, fmt.Errorf("%w: row=%d col=%d", sheets.ErrInvalidCell, row, col)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return RowRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	hdr, err := q.GetHeader(ctx, sheet)
	if errors.Is(err, sql.ErrNoRows) {
		return RowRecord{}, fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	if err != nil {
		return RowRecord{}, fmt.Errorf("get header %s: %w", sheet, err)
	}

	var rec RowRecord
	if row == sheets.HeaderRow {
		cells, err := decodeCells(hdr.Header)
		if err != nil {
			return RowRecord{}, err
		}
		cells = setAt(cells, col, value)
		enc, err := encodeCells(cells)
		if err != nil {
			return RowRecord{}, err
		}
		v, err := q.UpdateHeader(ctx, sheet, enc)
		if err != nil {
			return RowRecord{}, fmt.Errorf("update header %s: %w", sheet, err)
		}
		rec = RowRecord{Sheet: sheet, Position: HeaderPosition, Version: v, Cells: cells, SyncStatus: StatusPending}
	} else {
		pos := int64(row - 2)
		var cells []string
		existing, err := q.GetRow(ctx, sheet, pos)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return RowRecord{}, fmt.Errorf("get row %s/%d: %w", sheet, pos, err)
		default:
			if cells, err = decodeCells(existing.Cells); err != nil {
				return RowRecord{}, err
			}
		}
		cells = setAt(cells, col, value)
		enc, err := encodeCells(cells)
		if err != nil {
			return RowRecord{}, err
		}
		v, err := q.UpsertRow(ctx, sheet, pos, enc)
		if err != nil {
			return RowRecord{}, fmt.Errorf("upsert row %s/%d: %w", sheet, pos, err)
		}
		rec = RowRecord{Sheet: sheet, Position: int(pos), Version: v, Cells: cells, SyncStatus: StatusPending}
	}
	if err := tx.Commit(); err != nil {
		return RowRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// GetRow returns the current content of one row.
func (r *SQLiteRepository) GetRow(ctx context.Context, sheet string, position int) (RowRecord, error) {
	if position == HeaderPosition {
		hdr, err := r.queries.GetHeader(ctx, sheet)
		if errors.Is(err, sql.ErrNoRows) {
			return RowRecord{}, fmt.Errorf("%w: %s header", ErrRowNotFound, sheet)
		}
		if err != nil {
			return RowRecord{}, fmt.Errorf("get header %s: %w", sheet, err)
		}
		cells, err := decodeCells(hdr.Header)
		if err != nil {
			return RowRecord{}, err
		}
		return RowRecord{Sheet: sheet, Position: HeaderPosition, Version: hdr.Version, Cells: cells, SyncStatus: hdr.SyncStatus}, nil
	}
	row, err := r.queries.GetRow(ctx, sheet, int64(position))
	if errors.Is(err, sql.ErrNoRows) {
		return RowRecord{}, fmt.Errorf("%w: %s/%d", ErrRowNotFound, sheet, position)
	}
	if err != nil {
		return RowRecord{}, fmt.Errorf("get row %s/%d: %w", sheet, position, err)
	}
	return toRecord(row)
}

// PendingRows returns up to limit rows (headers included) that still
// need mirroring, oldest change first.
func (r *SQLiteRepository) PendingRows(ctx context.Context, limit int) ([]RowRecord, error) {
	rows, err := r.queries.PendingRows(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending rows: %w", err)
	}
	out := make([]RowRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// MarkSynced records that version of the row reached the spreadsheet.
// A newer local write keeps the row pending.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, sheet string, position int, version int64) error {
	var (
		n   int64
		err error
	)
	if position == HeaderPosition {
		n, err = r.queries.MarkHeaderSynced(ctx, sheet, version)
	} else {
		n, err = r.queries.MarkRowSynced(ctx, sheet, int64(position), version)
	}
	if err != nil {
		return fmt.Errorf("mark synced %s/%d: %w", sheet, position, err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Row changed since sync started, left pending",
			"sheet", sheet, "position", position, "version", version)
	}
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, sheet string, position int, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	var err error
	if position == HeaderPosition {
		err = r.queries.MarkHeaderError(ctx, sheet, msg)
	} else {
		err = r.queries.MarkRowError(ctx, sheet, int64(position), msg)
	}
	if err != nil {
		return fmt.Errorf("mark sync error %s/%d: %w", sheet, position, err)
	}
	return nil
}

// SyncCounts returns the number of stored rows per sync state.
func (r *SQLiteRepository) SyncCounts(ctx context.Context) (map[string]int64, error) {
	counts, err := r.queries.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rows by status: %w", err)
	}
	return counts, nil
}

// IsEmpty reports whether no data rows are stored.
func (r *SQLiteRepository) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.queries.CountRows(ctx)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return n == 0, nil
}

// Bootstrap loads the given sheets from src into an empty store, marked
// as synced. A store that already holds rows is left untouched.
func (r *SQLiteRepository) Bootstrap(ctx context.Context, src sheets.TableReader, names []string) error {
	empty, err := r.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	for _, name := range names {
		t, err := src.ReadTable(ctx, name)
		if errors.Is(err, sheets.ErrSheetNotFound) {
			slog.WarnContext(ctx, "Sheet missing upstream, keeping default header", "sheet", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if len(t.Header) > 0 {
			enc, err := encodeCells(t.Header)
			if err != nil {
				return err
			}
			if err := q.ReplaceHeaderSynced(ctx, name, enc); err != nil {
				return fmt.Errorf("store header %s: %w", name, err)
			}
		}
		for pos, cells := range t.Rows {
			enc, err := encodeCells(cells)
			if err != nil {
				return err
			}
			if err := q.InsertRow(ctx, name, int64(pos), enc, StatusSynced); err != nil {
				return fmt.Errorf("store row %s/%d: %w", name, pos, err)
			}
		}
		slog.InfoContext(ctx, "Bootstrapped sheet from upstream", "sheet", name, "rows", len(t.Rows))
	}
	return tx.Commit()
}

func toRecord(row SheetRow) (RowRecord, error) {
	cells, err := decodeCells(row.Cells)
	if err != nil {
		return RowRecord{}, err
	}
	return RowRecord{
		Sheet:      row.Sheet,
		Position:   int(row.Position),
		Version:    row.Version,
		Cells:      cells,
		SyncStatus: row.SyncStatus,
	}, nil
}

func setAt(cells []string, col int, value string) []string {
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	return cells
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(b), nil
}

func decodeCells(s string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(s), &cells); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	return cells, nil
}
