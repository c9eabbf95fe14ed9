package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
	"fintrack/internal/storage"
)

type failingWriter struct{ calls int }

func (f *failingWriter) WriteRow(context.Context, string, int, []string) error {
	f.calls++
	return errors.New("quota exceeded")
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHandleSyncMessageWritesRow(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	w := NewSyncWorker(repo, remote, 10)

	recs, err := repo.InsertRows(ctx, sheets.BudgetSheet, [][]string{
		{"2024-03", "Nithya", "Food", "5000"},
		{"2024-03", "Nithya", "Rent", "20000"},
	})
	require.NoError(t, err)

	// Deliver out of order; each row lands at its own position.
	for _, i := range []int{1, 0} {
		msg := amqp.NewRowSyncMessage(recs[i].Sheet, recs[i].Position, recs[i].Version)
		require.NoError(t, w.HandleSyncMessage(ctx, msg))
	}

	tbl, err := remote.ReadTable(ctx, sheets.BudgetSheet)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Food", tbl.Rows[0][2])
	assert.Equal(t, "Rent", tbl.Rows[1][2])

	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleSyncMessageIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	w := NewSyncWorker(repo, remote, 10)

	recs, err := repo.InsertRows(ctx, sheets.IncomeSheet, [][]string{{"2024-03", "Nithya", "Salary", "100000"}})
	require.NoError(t, err)
	msg := amqp.NewRowSyncMessage(recs[0].Sheet, recs[0].Position, recs[0].Version)

	require.NoError(t, w.HandleSyncMessage(ctx, msg))
	require.NoError(t, w.HandleSyncMessage(ctx, msg))

	tbl, err := remote.ReadTable(ctx, sheets.IncomeSheet)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 1)
}

func TestHandleSyncMessageSendsLatestCells(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	w := NewSyncWorker(repo, remote, 10)

	recs, err := repo.InsertRows(ctx, sheets.BankSheet, [][]string{{"2024-03-01T10:00:00", "-500"}})
	require.NoError(t, err)
	updated, err := repo.SetCell(ctx, sheets.BankSheet, sheets.RowNumber(0), 3, "Food")
	require.NoError(t, err)
	require.Greater(t, updated.Version, recs[0].Version)

	// A stale message still mirrors the current row.
	require.NoError(t, w.HandleSyncMessage(ctx, amqp.NewRowSyncMessage(sheets.BankSheet, 0, recs[0].Version)))

	tbl, err := remote.ReadTable(ctx, sheets.BankSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01T10:00:00", "-500", "Food"}, tbl.Rows[0])
}

func TestHandleSyncMessageMissingRowIsDropped(t *testing.T) {
	w := NewSyncWorker(newRepo(t), memory.New(), 10)
	err := w.HandleSyncMessage(context.Background(), amqp.NewRowSyncMessage(sheets.BudgetSheet, 42, 1))
	assert.NoError(t, err)
}

func TestHandleSyncMessageFailureMarksError(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	writer := &failingWriter{}
	w := NewSyncWorker(repo, writer, 10)

	recs, err := repo.InsertRows(ctx, sheets.SavingsSheet, [][]string{{"2024-03-01T10:00:00", "SIP", "5000", "CFA"}})
	require.NoError(t, err)

	err = w.HandleSyncMessage(ctx, amqp.NewRowSyncMessage(recs[0].Sheet, recs[0].Position, recs[0].Version))
	require.Error(t, err)

	rec, err := repo.GetRow(ctx, sheets.SavingsSheet, 0)
	require.NoError(t, err)
	assert.Equal(t, storage.StatusError, rec.SyncStatus)

	// Errored rows are retried by the sweep.
	pending, err := repo.PendingRows(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	w := NewSyncWorker(repo, remote, 2)

	_, err := repo.InsertRows(ctx, sheets.BudgetSheet, [][]string{
		{"2024-03", "Nithya", "Food", "1"},
		{"2024-03", "Nithya", "Rent", "2"},
		{"2024-03", "Nithya", "Fuel", "3"},
	})
	require.NoError(t, err)

	n, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	tbl, err := remote.ReadTable(ctx, sheets.BudgetSheet)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 3)
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	writer := &failingWriter{}
	w := NewSyncWorker(repo, writer, 10)

	_, err := repo.InsertRows(ctx, sheets.IncomeSheet, [][]string{{"a"}, {"b"}})
	require.NoError(t, err)

	n, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 2, writer.calls)
}

func TestStartupSyncCheckSyncsHeaderChange(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	w := NewSyncWorker(repo, remote, 1)

	_, err := repo.SetCell(ctx, sheets.BankSheet, sheets.HeaderRow, 20, "notes2")
	require.NoError(t, err)
	_, err = repo.InsertRows(ctx, sheets.BankSheet, [][]string{{"x"}})
	require.NoError(t, err)

	require.NoError(t, w.StartupSyncCheck(ctx))

	tbl, err := remote.ReadTable(ctx, sheets.BankSheet)
	require.NoError(t, err)
	require.Len(t, tbl.Header, 20)
	assert.Equal(t, "notes2", tbl.Header[19])
	assert.Equal(t, [][]string{{"x"}}, tbl.Rows)
}

func TestPollerLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	remote := memory.New()
	p := NewPoller(NewSyncWorker(repo, remote, 10), PollerConfig{Interval: 20 * time.Millisecond})

	assert.False(t, p.IsRunning())
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx), "second start must fail")

	_, err := repo.InsertRows(ctx, sheets.IncomeSheet, [][]string{{"2024-03", "Nithya", "Salary", "1"}})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		tbl, err := remote.ReadTable(ctx, sheets.IncomeSheet)
		return err == nil && len(tbl.Rows) == 1
	}, 2*time.Second, 20*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))
	assert.False(t, p.IsRunning())
	assert.NoError(t, p.Stop(stopCtx))
}
