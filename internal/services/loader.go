package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Snapshot holds the decoded content of the sheets one request needs.
type Snapshot struct {
	Income  []core.IncomeEntry
	Budget  []core.BudgetEntry
	Bank    []core.Transaction
	Card    []core.Transaction
	Savings []core.SavingsAllocation

	// Tables keeps the raw tables, keyed by sheet name.
	Tables map[string]sheets.Table
}

// Loader reads sheets in parallel. A missing sheet loads as empty.
type Loader struct {
	store sheets.TableReader
}

func NewLoader(store sheets.TableReader) *Loader {
	return &Loader{store: store}
}

func (l *Loader) Load(ctx context.Context, names ...string) (*Snapshot, error) {
	snap := &Snapshot{Tables: make(map[string]sheets.Table, len(names))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			t, err := l.store.ReadTable(gctx, name)
			if errors.Is(err, sheets.ErrSheetNotFound) {
				slog.WarnContext(gctx, "Sheet not found, treating as empty", "sheet", name)
				t, err = sheets.Table{Name: name}, nil
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			mu.Lock()
			snap.Tables[name] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for name, t := range snap.Tables {
		switch name {
		case sheets.IncomeSheet:
			snap.Income = sheets.DecodeIncome(t)
		case sheets.BudgetSheet:
			snap.Budget = sheets.DecodeBudget(t)
		case sheets.BankSheet:
			snap.Bank = sheets.DecodeTransactions(t, core.SourceBank)
		case sheets.CardSheet:
			snap.Card = sheets.DecodeTransactions(t, core.SourceCard)
		case sheets.SavingsSheet:
			snap.Savings = sheets.DecodeSavings(t)
		}
	}
	return snap, nil
}

// Transactions returns bank then card transactions.
func (s *Snapshot) Transactions() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.Bank)+len(s.Card))
	out = append(out, s.Bank...)
	return append(out, s.Card...)
}

// SheetFor maps a transaction source to its sheet.
func SheetFor(src core.Source) string {
	if src == core.SourceCard {
		return sheets.CardSheet
	}
	return sheets.BankSheet
}
