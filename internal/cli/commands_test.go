package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

func testStore() *memory.Store {
	s := memory.New()
	s.Seed(sheets.Table{Name: sheets.BudgetSheet, Header: sheets.Columns(sheets.BudgetSheet), Rows: [][]string{
		{"2024-03", "Nithya", "Food", "5000"},
		{"2024-03", "Nithya", "Rent", "20000"},
	}})
	bank := func(ts, amount, cat, mine string) []string {
		return []string{"XX1", ts, amount, "", "debit", "", "Shop", "", cat, "HDFC", "", "Nithya", "", "", mine}
	}
	s.Seed(sheets.Table{Name: sheets.BankSheet, Header: sheets.Columns(sheets.BankSheet), Rows: [][]string{
		bank("2024-03-02 10:00:00", "1200", "Groceries", "Food"),
		bank("2024-03-03 10:00:00", "700", "Misc", ""),
		bank("2024-03-04 10:00:00", "5000", "Transfer", "Savings"),
	}})
	return s
}

func run(t *testing.T, store *memory.Store, args ...string) (string, error) {
	t.Helper()
	closed := false
	root := NewRootCommand(func(context.Context) (sheets.Workbook, func() error, error) {
		return store, func() error { closed = true; return nil }, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	if err == nil {
		assert.True(t, closed, "store released")
	}
	return out.String(), err
}

func TestReconcileCommand(t *testing.T) {
	out, err := run(t, testStore(), "reconcile", "--person", "Nithya")
	require.NoError(t, err)

	assert.Contains(t, out, "Month: 2024-03")
	lines := strings.Split(out, "\n")
	var food, total string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(strings.TrimSpace(l), "Food"):
			food = l
		case strings.HasPrefix(strings.TrimSpace(l), "Total"):
			total = l
		}
	}
	assert.Regexp(t, `Food\s+5000\.00\s+1200\.00\s+24\.0%`, food)
	assert.Regexp(t, `Total\s+25000\.00\s+6900\.00\s+27\.6%`, total)
}

func TestReconcileCommandRejectsBadMonth(t *testing.T) {
	_, err := run(t, testStore(), "reconcile", "--month", "soon")
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestCategorizeCommands(t *testing.T) {
	store := testStore()

	out, err := run(t, store, "uncategorized")
	require.NoError(t, err)
	assert.Contains(t, out, "bank    1")
	assert.NotContains(t, out, "bank    0")

	out, err = run(t, store, "categorize", "bank", "1", "personal care")
	require.NoError(t, err)
	assert.Equal(t, "Saved 1 categories\n", out)

	tbl, err := store.ReadTable(context.Background(), sheets.BankSheet)
	require.NoError(t, err)
	assert.Equal(t, "Personal Care", tbl.Get(tbl.Rows[1], sheets.ColMyCategory))

	out, err = run(t, store, "pending")
	require.NoError(t, err)
	assert.Equal(t, "Every transaction has a category.\n", out)

	_, err = run(t, store, "categorize", "bank", "1", "Crypto")
	assert.ErrorIs(t, err, core.ErrUnknownCategory)
	_, err = run(t, store, "categorize", "atm", "1", "Food")
	assert.Error(t, err)
	_, err = run(t, store, "categorize", "bank", "99", "Food")
	assert.ErrorIs(t, err, services.ErrRowOutOfRange)
}

func TestSavingsCommands(t *testing.T) {
	store := testStore()

	out, err := run(t, store, "savings", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "5000.00")
	assert.Contains(t, out, "Total saved 0.00")

	out, err = run(t, store, "savings", "allocate", "2", "cfa")
	require.NoError(t, err)
	assert.Equal(t, "Allocated 5000.00 to CFA\n", out)

	out, err = run(t, store, "savings", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing waiting to be allocated.")
	assert.Contains(t, out, "Total saved 5000.00")

	_, err = run(t, store, "savings", "allocate", "2", "CFA")
	assert.ErrorIs(t, err, core.ErrAlreadyAllocated)
	_, err = run(t, store, "savings", "allocate", "-3", "CFA")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	store := testStore()
	path := filepath.Join(t.TempDir(), "card.csv")
	csv := strings.Join(sheets.CardImportColumns, ",") + "\n" +
		"4111,Regalia,2024-03-05 19:00:00,450,debit,Cafe,,Dining,\n" +
		"4111,Regalia,2024-03-06 12:30:00,90,debit,Metro,,Travel,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	out, err := run(t, store, "import", "--kind", "card", "--person", "Divyaraj", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 rows from card.csv into credit_card")

	tbl, err := store.ReadTable(context.Background(), sheets.CardSheet)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Divyaraj", tbl.Get(tbl.Rows[1], sheets.ColPerson))

	_, err = run(t, store, "import", "--kind", "card", path)
	assert.Error(t, err, "person is required")
	_, err = run(t, store, "import", "--kind", "card", "--person", "Divyaraj", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenFailureIsReported(t *testing.T) {
	root := NewRootCommand(func(context.Context) (sheets.Workbook, func() error, error) {
		return nil, nil, errors.New("no credentials")
	})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"uncategorized"})

	err := root.ExecuteContext(context.Background())
	assert.EqualError(t, err, "open store: no credentials")
}
