package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/sheets"
)

func TestNewHasEverySheetWithHeader(t *testing.T) {
	s := New()
	for _, name := range sheets.AllSheets() {
		tbl, err := s.ReadTable(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, sheets.Columns(name), tbl.Header)
		assert.Empty(t, tbl.Rows)
	}
	_, err := s.ReadTable(context.Background(), "nope")
	assert.ErrorIs(t, err, sheets.ErrSheetNotFound)
}

func TestAppendAndUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	ref, err := s.AppendRows(ctx, sheets.BudgetSheet, [][]string{
		{"2024-03", "Nithya", "Food", "5000"},
		{"2024-03", "Nithya", "Rent", "20000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "mem:budget!2:3", ref)

	require.NoError(t, s.UpdateCell(ctx, sheets.BudgetSheet, 3, 4, "21000"))
	tbl, err := s.ReadTable(ctx, sheets.BudgetSheet)
	require.NoError(t, err)
	assert.Equal(t, "21000", tbl.Rows[1][3])

	// reads are copies
	tbl.Rows[0][0] = "changed"
	again, _ := s.ReadTable(ctx, sheets.BudgetSheet)
	assert.Equal(t, "2024-03", again.Rows[0][0])

	assert.ErrorIs(t, s.UpdateCell(ctx, sheets.BudgetSheet, 0, 1, "x"), sheets.ErrInvalidCell)
}

func TestUpdateCellGrowsHeaderAndRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(sheets.Table{Name: sheets.CardSheet, Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}})

	require.NoError(t, s.UpdateCell(ctx, sheets.CardSheet, 1, 3, sheets.ColMyCategory))
	require.NoError(t, s.UpdateCell(ctx, sheets.CardSheet, 2, 3, "Food"))
	tbl, _ := s.ReadTable(ctx, sheets.CardSheet)
	assert.Equal(t, []string{"a", "b", "my_category"}, tbl.Header)
	assert.Equal(t, []string{"1", "2", "Food"}, tbl.Rows[0])
}

func TestWriteRow(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.WriteRow(ctx, sheets.SavingsSheet, 3, []string{"t", "d", "1", "CFA"}))
	tbl, _ := s.ReadTable(ctx, sheets.SavingsSheet)
	require.Len(t, tbl.Rows, 2)
	assert.Nil(t, tbl.Rows[0])
	assert.Equal(t, []string{"t", "d", "1", "CFA"}, tbl.Rows[1])
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	content := "month_year,person,category,income\n2024-03,Nithya,Salary,\"95,000\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "income.csv"), []byte(content), 0o644))

	s, err := NewFromDir(dir)
	require.NoError(t, err)
	tbl, err := s.ReadTable(context.Background(), sheets.IncomeSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2024-03", "Nithya", "Salary", "95,000"}}, tbl.Rows)

	// untouched sheets keep the default header
	bank, _ := s.ReadTable(context.Background(), sheets.BankSheet)
	assert.Equal(t, sheets.Columns(sheets.BankSheet), bank.Header)
}
