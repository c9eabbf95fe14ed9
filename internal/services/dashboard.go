package services

import (
	"context"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// Dashboard is the home page data for one filter.
type Dashboard struct {
	Filter         core.Filter
	KPIs           core.KPIs
	Reconciliation core.Reconciliation
	Breakdown      []core.CategoryAmount
	Trend          []core.MonthAmount
	Months         []core.Month
}

type DashboardService struct {
	loader *Loader
}

func NewDashboardService(store sheets.TableReader) *DashboardService {
	return &DashboardService{loader: NewLoader(store)}
}

// Dashboard loads every sheet the home page needs in one parallel read.
// KPIs cover all rows; the other panels follow f, whose zero month
// selects the newest budget month on file.
func (s *DashboardService) Dashboard(ctx context.Context, f core.Filter) (Dashboard, error) {
	snap, err := s.loader.Load(ctx, sheets.BudgetSheet, sheets.BankSheet, sheets.CardSheet)
	if err != nil {
		return Dashboard{}, err
	}
	txns := snap.Transactions()
	months := core.BudgetMonths(snap.Budget)
	f = defaultMonth(f, months)
	return Dashboard{
		Filter:         f,
		KPIs:           core.ComputeKPIs(snap.Bank, snap.Card),
		Reconciliation: core.Reconcile(f, snap.Budget, txns),
		Breakdown:      core.CategoryBreakdown(f, txns),
		Trend:          core.MonthlyTrend(core.FilterTransactions(core.Filter{Person: f.Person}, txns)),
		Months:         months,
	}, nil
}

// Trend returns monthly debit totals for person across all months.
func (s *DashboardService) Trend(ctx context.Context, person string) ([]core.MonthAmount, error) {
	snap, err := s.loader.Load(ctx, sheets.BankSheet, sheets.CardSheet)
	if err != nil {
		return nil, err
	}
	return core.MonthlyTrend(core.FilterTransactions(core.Filter{Person: person}, snap.Transactions())), nil
}
