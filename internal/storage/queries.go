package storage

import (
	"context"
	"database/sql"
)

type SheetColumns struct {
	Sheet      string
	Header     string
	Version    int64
	SyncStatus string
}

type SheetRow struct {
	Sheet      string
	Position   int64
	Cells      string
	Version    int64
	SyncStatus string
	SyncError  sql.NullString
}

const seedHeader = `INSERT OR IGNORE INTO sheet_columns (sheet, header, sync_status) VALUES (?, ?, 'synced')`

func (q *Queries) SeedHeader(ctx context.Context, sheet, header string) error {
	_, err := q.db.ExecContext(ctx, seedHeader, sheet, header)
	return err
}

const getHeader = `SELECT sheet, header, version, sync_status FROM sheet_columns WHERE sheet = ?`

func (q *Queries) GetHeader(ctx context.Context, sheet string) (SheetColumns, error) {
	var c SheetColumns
	err := q.db.QueryRowContext(ctx, getHeader, sheet).
		Scan(&c.Sheet, &c.Header, &c.Version, &c.SyncStatus)
	return c, err
}

const updateHeader = `UPDATE sheet_columns
SET header = ?, version = version + 1, sync_status = 'pending', sync_error = NULL, updated_at = CURRENT_TIMESTAMP
WHERE sheet = ?
RETURNING version`

func (q *Queries) UpdateHeader(ctx context.Context, sheet, header string) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx, updateHeader, header, sheet).Scan(&v)
	return v, err
}

const replaceHeaderSynced = `INSERT INTO sheet_columns (sheet, header, sync_status) VALUES (?, ?, 'synced')
ON CONFLICT(sheet) DO UPDATE SET header = excluded.header, sync_status = 'synced', sync_error = NULL, updated_at = CURRENT_TIMESTAMP`

func (q *Queries) ReplaceHeaderSynced(ctx context.Context, sheet, header string) error {
	_, err := q.db.ExecContext(ctx, replaceHeaderSynced, sheet, header)
	return err
}

const listRows = `SELECT sheet, position, cells, version, sync_status, sync_error
FROM sheet_rows WHERE sheet = ? ORDER BY position`

func (q *Queries) ListRows(ctx context.Context, sheet string) ([]SheetRow, error) {
	rows, err := q.db.QueryContext(ctx, listRows, sheet)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

const getRow = `SELECT sheet, position, cells, version, sync_status, sync_error
FROM sheet_rows WHERE sheet = ? AND position = ?`

func (q *Queries) GetRow(ctx context.Context, sheet string, position int64) (SheetRow, error) {
	var r SheetRow
	err := q.db.QueryRowContext(ctx, getRow, sheet, position).
		Scan(&r.Sheet, &r.Position, &r.Cells, &r.Version, &r.SyncStatus, &r.SyncError)
	return r, err
}

const nextPosition = `SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_rows WHERE sheet = ?`

func (q *Queries) NextPosition(ctx context.Context, sheet string) (int64, error) {
	var p int64
	err := q.db.QueryRowContext(ctx, nextPosition, sheet).Scan(&p)
	return p, err
}

const insertRow = `INSERT INTO sheet_rows (sheet, position, cells, sync_status) VALUES (?, ?, ?, ?)`

func (q *Queries) InsertRow(ctx context.Context, sheet string, position int64, cells, status string) error {
	_, err := q.db.ExecContext(ctx, insertRow, sheet, position, cells, status)
	return err
}

const upsertRow = `INSERT INTO sheet_rows (sheet, position, cells, sync_status) VALUES (?, ?, ?, 'pending')
ON CONFLICT(sheet, position) DO UPDATE SET
    cells = excluded.cells,
    version = sheet_rows.version + 1,
    sync_status = 'pending',
    sync_error = NULL,
    updated_at = CURRENT_TIMESTAMP
RETURNING version`

func (q *Queries) UpsertRow(ctx context.Context, sheet string, position int64, cells string) (int64, error) {
	var v int64
	err := q.db.QueryRowContext(ctx, upsertRow, sheet, position, cells).Scan(&v)
	return v, err
}

const pendingRows = `SELECT sheet, position, cells, version, sync_status, sync_error
FROM (
    SELECT sheet, -1 AS position, header AS cells, version, sync_status, sync_error, updated_at
    FROM sheet_columns WHERE sync_status IN ('pending', 'error')
    UNION ALL
    SELECT sheet, position, cells, version, sync_status, sync_error, updated_at
    FROM sheet_rows WHERE sync_status IN ('pending', 'error')
)
ORDER BY updated_at, sheet, position
LIMIT ?`

func (q *Queries) PendingRows(ctx context.Context, limit int64) ([]SheetRow, error) {
	rows, err := q.db.QueryContext(ctx, pendingRows, limit)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

const markRowSynced = `UPDATE sheet_rows SET sync_status = 'synced', sync_error = NULL
WHERE sheet = ? AND position = ? AND version = ?`

func (q *Queries) MarkRowSynced(ctx context.Context, sheet string, position, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markRowSynced, sheet, position, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markHeaderSynced = `UPDATE sheet_columns SET sync_status = 'synced', sync_error = NULL
WHERE sheet = ? AND version = ?`

func (q *Queries) MarkHeaderSynced(ctx context.Context, sheet string, version int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markHeaderSynced, sheet, version)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markRowError = `UPDATE sheet_rows SET sync_status = 'error', sync_error = ?, updated_at = CURRENT_TIMESTAMP
WHERE sheet = ? AND position = ?`

func (q *Queries) MarkRowError(ctx context.Context, sheet string, position int64, msg string) error {
	_, err := q.db.ExecContext(ctx, markRowError, msg, sheet, position)
	return err
}

const markHeaderError = `UPDATE sheet_columns SET sync_status = 'error', sync_error = ?, updated_at = CURRENT_TIMESTAMP
WHERE sheet = ?`

func (q *Queries) MarkHeaderError(ctx context.Context, sheet, msg string) error {
	_, err := q.db.ExecContext(ctx, markHeaderError, msg, sheet)
	return err
}

const countRows = `SELECT COUNT(*) FROM sheet_rows`

func (q *Queries) CountRows(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRows).Scan(&n)
	return n, err
}

const countByStatus = `SELECT sync_status, COUNT(*) FROM sheet_rows GROUP BY sync_status`

func (q *Queries) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := q.db.QueryContext(ctx, countByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func scanRows(rows *sql.Rows) ([]SheetRow, error) {
	defer rows.Close()
	var items []SheetRow
	for rows.Next() {
		var r SheetRow
		if err := rows.Scan(&r.Sheet, &r.Position, &r.Cells, &r.Version, &r.SyncStatus, &r.SyncError); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
