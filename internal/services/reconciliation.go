package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// ReconciliationView is the budget vs actual table with the months the
// selector can offer.
type ReconciliationView struct {
	core.Reconciliation
	Months []core.Month
}

type ReconciliationService struct {
	loader *Loader
}

func NewReconciliationService(store sheets.TableReader) *ReconciliationService {
	return &ReconciliationService{loader: NewLoader(store)}
}

// Reconcile compares budgets with debits for f. A zero month selects the
// newest budget month on file. Missing data yields an empty table, never
// an error.
func (s *ReconciliationService) Reconcile(ctx context.Context, f core.Filter) (ReconciliationView, error) {
	snap, err := s.loader.Load(ctx, sheets.BudgetSheet, sheets.BankSheet, sheets.CardSheet)
	if err != nil {
		return ReconciliationView{}, err
	}
	months := core.BudgetMonths(snap.Budget)
	f = defaultMonth(f, months)
	return ReconciliationView{
		Reconciliation: core.Reconcile(f, snap.Budget, snap.Transactions()),
		Months:         months,
	}, nil
}

func defaultMonth(f core.Filter, months []core.Month) core.Filter {
	if f.Month.IsZero() && len(months) > 0 {
		f.Month = months[0]
	}
	return f
}

// Months lists the budget months on file, newest first.
func (s *ReconciliationService) Months(ctx context.Context) ([]core.Month, error) {
	snap, err := s.loader.Load(ctx, sheets.BudgetSheet)
	if err != nil {
		return nil, err
	}
	return core.BudgetMonths(snap.Budget), nil
}
