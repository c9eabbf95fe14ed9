package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var ErrRowOutOfRange = errors.New("row position out of range")

// Assignment sets the manual category of one transaction.
type Assignment struct {
	Source   core.Source
	Position int
	Category string
}

type CategorizationService struct {
	store  sheets.Workbook
	loader *Loader
}

func NewCategorizationService(store sheets.Workbook) *CategorizationService {
	return &CategorizationService{store: store, loader: NewLoader(store)}
}

// Pending lists bank then card transactions with no manual category.
func (s *CategorizationService) Pending(ctx context.Context) ([]core.Transaction, error) {
	snap, err := s.loader.Load(ctx, sheets.BankSheet, sheets.CardSheet)
	if err != nil {
		return nil, err
	}
	return core.Uncategorized(snap.Transactions()), nil
}

// Save writes each assignment into the my_category cell of its row,
// creating the column header when the sheet lacks it. Every category is
// checked before anything is written. Later writes win.
func (s *CategorizationService) Save(ctx context.Context, assignments []Assignment) (int, error) {
	if len(assignments) == 0 {
		return 0, nil
	}
	values := make([]string, len(assignments))
	for i, a := range assignments {
		c, err := core.ValidateCategory(a.Category)
		if err != nil {
			return 0, fmt.Errorf("position %d: %w: %q", a.Position, err, a.Category)
		}
		values[i] = c
	}

	tables := map[string]sheets.Table{}
	saved := 0
	for i, a := range assignments {
		sheet := SheetFor(a.Source)
		t, ok := tables[sheet]
		if !ok {
			var err error
			if t, err = s.prepare(ctx, sheet); err != nil {
				return saved, err
			}
			tables[sheet] = t
		}
		if a.Position < 0 || a.Position >= len(t.Rows) {
			return saved, fmt.Errorf("%w: %s position %d", ErrRowOutOfRange, sheet, a.Position)
		}
		col, _ := t.ColumnNumber(sheets.ColMyCategory)
		if err := s.store.UpdateCell(ctx, sheet, sheets.RowNumber(a.Position), col, values[i]); err != nil {
			return saved, fmt.Errorf("update %s row %d: %w", sheet, sheets.RowNumber(a.Position), err)
		}
		saved++
		slog.InfoContext(ctx, "Category saved",
			"sheet", sheet,
			"position", a.Position,
			"category", values[i])
	}
	return saved, nil
}

// prepare reads sheet and makes sure it has a my_category column.
func (s *CategorizationService) prepare(ctx context.Context, sheet string) (sheets.Table, error) {
	t, err := s.store.ReadTable(ctx, sheet)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("read %s: %w", sheet, err)
	}
	col, ok := t.ColumnNumber(sheets.ColMyCategory)
	if ok {
		return t, nil
	}
	if err := s.store.UpdateCell(ctx, sheet, sheets.HeaderRow, col, sheets.ColMyCategory); err != nil {
		return sheets.Table{}, fmt.Errorf("add %s column to %s: %w", sheets.ColMyCategory, sheet, err)
	}
	t.Header = append(t.Header, sheets.ColMyCategory)
	slog.InfoContext(ctx, "Added category column", "sheet", sheet, "column", col)
	return t, nil
}
