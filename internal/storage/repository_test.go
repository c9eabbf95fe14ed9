package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewRepositorySeedsHeaders(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, name := range sheets.AllSheets() {
		tbl, err := repo.ReadTable(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, sheets.Columns(name), tbl.Header)
		assert.Empty(t, tbl.Rows)
	}
	_, err := repo.ReadTable(ctx, "unknown")
	assert.ErrorIs(t, err, sheets.ErrSheetNotFound)

	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestInsertRowsAssignsPositions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	recs, err := repo.InsertRows(ctx, sheets.BudgetSheet, [][]string{
		{"2024-03", "Nithya", "Food", "5000"},
		{"2024-03", "Nithya", "Rent", "20000"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].Position)
	assert.Equal(t, 1, recs[1].Position)
	assert.Equal(t, 3, recs[1].SheetRowNumber())

	recs, err = repo.InsertRows(ctx, sheets.BudgetSheet, [][]string{{"2024-04", "Nithya", "Food", "1"}})
	require.NoError(t, err)
	assert.Equal(t, 2, recs[0].Position)

	tbl, err := repo.ReadTable(ctx, sheets.BudgetSheet)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "Rent", tbl.Rows[1][2])

	_, err = repo.InsertRows(ctx, "nope", [][]string{{"x"}})
	assert.ErrorIs(t, err, sheets.ErrSheetNotFound)
}

func TestSetCellBumpsVersionAndSyncFlow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.InsertRows(ctx, sheets.CardSheet, [][]string{{"4111", "Gold", "2024-03-01", "10", "debit"}})
	require.NoError(t, err)

	rec, err := repo.SetCell(ctx, sheets.CardSheet, 2, 13, "Food")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Version)
	assert.Len(t, rec.Cells, 13)
	assert.Equal(t, "Food", rec.Cells[12])

	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].Version)

	// a stale version does not clear the pending flag
	require.NoError(t, repo.MarkSynced(ctx, sheets.CardSheet, 0, 1))
	pending, _ = repo.PendingRows(ctx, 10)
	assert.Len(t, pending, 1)

	require.NoError(t, repo.MarkSynced(ctx, sheets.CardSheet, 0, 2))
	pending, _ = repo.PendingRows(ctx, 10)
	assert.Empty(t, pending)

	counts, err := repo.SyncCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[StatusSynced])
}

func TestSetCellHeaderAndMissingRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	width := len(sheets.Columns(sheets.SavingsSheet))
	rec, err := repo.SetCell(ctx, sheets.SavingsSheet, 1, width+1, "note")
	require.NoError(t, err)
	assert.Equal(t, HeaderPosition, rec.Position)
	assert.Equal(t, 1, rec.SheetRowNumber())

	// writing past the end creates the row
	rec, err = repo.SetCell(ctx, sheets.SavingsSheet, 4, 2, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Position)
	assert.Equal(t, int64(1), rec.Version)

	tbl, err := repo.ReadTable(ctx, sheets.SavingsSheet)
	require.NoError(t, err)
	assert.Equal(t, "note", tbl.Header[width])
	require.Len(t, tbl.Rows, 3)
	assert.Nil(t, tbl.Rows[0])
	assert.Equal(t, []string{"", "x"}, tbl.Rows[2])

	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	hdr, err := repo.GetRow(ctx, sheets.SavingsSheet, HeaderPosition)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, hdr.SyncStatus)

	_, err = repo.GetRow(ctx, sheets.SavingsSheet, 99)
	assert.ErrorIs(t, err, ErrRowNotFound)

	_, err = repo.SetCell(ctx, sheets.SavingsSheet, 0, 1, "x")
	assert.ErrorIs(t, err, sheets.ErrInvalidCell)
}

func TestMarkSyncErrorKeepsRowPending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, err := repo.InsertRows(ctx, sheets.IncomeSheet, [][]string{{"2024-03", "Nithya", "Salary", "1"}})
	require.NoError(t, err)

	require.NoError(t, repo.MarkSyncError(ctx, sheets.IncomeSheet, 0, assert.AnError))
	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, StatusError, pending[0].SyncStatus)
}

func TestBootstrapFromUpstream(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	upstream := memory.New()
	upstream.Seed(sheets.Table{
		Name:   sheets.IncomeSheet,
		Header: []string{"month_year", "person", "category", "income"},
		Rows:   [][]string{{"2024-02", "Nithya", "Salary", "90000"}},
	})
	require.NoError(t, repo.Bootstrap(ctx, upstream, sheets.AllSheets()))

	tbl, err := repo.ReadTable(ctx, sheets.IncomeSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2024-02", "Nithya", "Salary", "90000"}}, tbl.Rows)

	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// a second bootstrap does nothing once rows exist
	upstream.Seed(sheets.Table{Name: sheets.IncomeSheet, Header: sheets.Columns(sheets.IncomeSheet)})
	require.NoError(t, repo.Bootstrap(ctx, upstream, sheets.AllSheets()))
	tbl, _ = repo.ReadTable(ctx, sheets.IncomeSheet)
	assert.Len(t, tbl.Rows, 1)
}
