package core

import "sort"

// ReconciliationRow is one category of the budget vs actual table.
type ReconciliationRow struct {
	Category    string
	Budgeted    Money
	Spent       Money
	PercentUsed float64
}

// Reconciliation is the budget vs actual table for one filter.
type Reconciliation struct {
	Filter        Filter
	Rows          []ReconciliationRow
	TotalBudgeted Money
	TotalSpent    Money
	PercentUsed   float64
}

// PercentUsed returns spent as a percentage of budgeted, or 0 when
// nothing was budgeted.
func PercentUsed(spent, budgeted Money) float64 {
	if budgeted.Cents == 0 {
		return 0
	}
	return float64(spent.Cents) / float64(budgeted.Cents) * 100
}

// Reconcile joins budgets and debit transactions by category for the
// person and month in f. Categories present on only one side get zero on
// the other. Missing data yields an empty table, never an error.
func Reconcile(f Filter, budgets []BudgetEntry, txns []Transaction) Reconciliation {
	budgeted := newSumByKey()
	for _, b := range budgets {
		if !f.MatchesPerson(b.Person) || !f.MatchesMonth(b.Month) {
			continue
		}
		budgeted.add(b.Category, b.Amount.Cents)
	}

	spent := newSumByKey()
	for _, t := range txns {
		if !t.IsDebit() || !f.MatchesPerson(t.Person) {
			continue
		}
		if t.Timestamp.IsZero() || !f.MatchesMonth(MonthOf(t.Timestamp)) {
			continue
		}
		spent.add(t.EffectiveCategory(), t.Amount.Cents)
	}

	names := map[string]string{}
	for k, n := range spent.names {
		names[k] = n
	}
	// Budget spelling wins over the bank's.
	for k, n := range budgeted.names {
		names[k] = n
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	r := Reconciliation{Filter: f, Rows: make([]ReconciliationRow, 0, len(keys))}
	for _, k := range keys {
		b := Money{Cents: budgeted.totals[k]}
		s := Money{Cents: spent.totals[k]}
		r.Rows = append(r.Rows, ReconciliationRow{
			Category:    names[k],
			Budgeted:    b,
			Spent:       s,
			PercentUsed: PercentUsed(s, b),
		})
		r.TotalBudgeted = r.TotalBudgeted.Add(b)
		r.TotalSpent = r.TotalSpent.Add(s)
	}
	r.PercentUsed = PercentUsed(r.TotalSpent, r.TotalBudgeted)
	return r
}

// BudgetMonths returns the distinct months present in budgets, newest
// first.
func BudgetMonths(budgets []BudgetEntry) []Month {
	seen := map[Month]bool{}
	var out []Month
	for _, b := range budgets {
		if b.Month.IsZero() || seen[b.Month] {
			continue
		}
		seen[b.Month] = true
		out = append(out, b.Month)
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	return out
}
