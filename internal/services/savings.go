package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var ErrNotSavings = errors.New("transaction is not marked as savings")

// SavingsOverview is what the savings page shows.
type SavingsOverview struct {
	Pending []core.Transaction
	Ledger  []core.SavingsAllocation
	Summary core.SavingsSummary
}

type SavingsService struct {
	store  sheets.Workbook
	loader *Loader
}

func NewSavingsService(store sheets.Workbook) *SavingsService {
	return &SavingsService{store: store, loader: NewLoader(store)}
}

// Overview loads pending savings transactions and the ledger summary.
func (s *SavingsService) Overview(ctx context.Context) (SavingsOverview, error) {
	snap, err := s.loader.Load(ctx, sheets.BankSheet, sheets.SavingsSheet)
	if err != nil {
		return SavingsOverview{}, err
	}
	pending := core.PendingSavings(snap.Bank, snap.Savings)
	core.SortByTimestamp(pending)
	return SavingsOverview{
		Pending: pending,
		Ledger:  snap.Savings,
		Summary: core.SummarizeSavings(snap.Savings),
	}, nil
}

// Pending lists savings transactions not yet in the ledger.
func (s *SavingsService) Pending(ctx context.Context) ([]core.Transaction, error) {
	o, err := s.Overview(ctx)
	if err != nil {
		return nil, err
	}
	return o.Pending, nil
}

// Allocate records the bank transaction at position against goal.
func (s *SavingsService) Allocate(ctx context.Context, position int, goal string) (core.SavingsAllocation, error) {
	snap, err := s.loader.Load(ctx, sheets.BankSheet, sheets.SavingsSheet)
	if err != nil {
		return core.SavingsAllocation{}, err
	}
	var (
		txn   core.Transaction
		found bool
	)
	for _, t := range snap.Bank {
		if t.Position == position {
			txn, found = t, true
			break
		}
	}
	if !found {
		return core.SavingsAllocation{}, fmt.Errorf("%w: %s position %d", ErrRowOutOfRange, sheets.BankSheet, position)
	}
	if !core.SameKey(txn.UserCategory, core.SavingsCategory) {
		return core.SavingsAllocation{}, fmt.Errorf("%w: position %d", ErrNotSavings, position)
	}
	if core.IsAllocated(txn, snap.Savings) {
		return core.SavingsAllocation{}, fmt.Errorf("%w: position %d", core.ErrAlreadyAllocated, position)
	}
	alloc, err := core.NewAllocation(txn, goal)
	if err != nil {
		return core.SavingsAllocation{}, err
	}
	ref, err := s.store.AppendRows(ctx, sheets.SavingsSheet, [][]string{sheets.EncodeSavings(alloc)})
	if err != nil {
		return core.SavingsAllocation{}, fmt.Errorf("append allocation: %w", err)
	}
	slog.InfoContext(ctx, "Savings allocated",
		"position", position,
		"goal", alloc.Goal,
		"amount", alloc.Amount.CellString(),
		"sheets_ref", ref)
	return alloc, nil
}
