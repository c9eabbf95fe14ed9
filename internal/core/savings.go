package core

import (
	"sort"
	"strings"
	"time"
)

type ledgerKey struct {
	ts    int64
	cents int64
}

func keyOf(ts time.Time, m Money) ledgerKey {
	return ledgerKey{ts: ts.UnixNano(), cents: m.Cents}
}

// instant is the moment t is matched against the ledger with.
func (t Transaction) instant() time.Time {
	if t.Instant.IsZero() {
		return t.Timestamp
	}
	return t.Instant
}

// SavingsCandidates returns the bank transactions marked as savings.
func SavingsCandidates(bank []Transaction) []Transaction {
	var out []Transaction
	for _, t := range bank {
		if SameKey(t.UserCategory, SavingsCategory) {
			out = append(out, t)
		}
	}
	return out
}

// PendingSavings returns the savings transactions that have no ledger
// row with the same timestamp and amount. Matching is exact: a ledger
// row that differs in either field does not cover the transaction.
func PendingSavings(bank []Transaction, ledger []SavingsAllocation) []Transaction {
	done := make(map[ledgerKey]bool, len(ledger))
	for _, a := range ledger {
		done[keyOf(a.Timestamp, a.Amount)] = true
	}
	var out []Transaction
	for _, t := range SavingsCandidates(bank) {
		if !done[keyOf(t.instant(), t.Amount)] {
			out = append(out, t)
		}
	}
	return out
}

// IsAllocated reports whether the ledger already covers t.
func IsAllocated(t Transaction, ledger []SavingsAllocation) bool {
	for _, a := range ledger {
		if keyOf(a.Timestamp, a.Amount) == keyOf(t.instant(), t.Amount) {
			return true
		}
	}
	return false
}

// NewAllocation builds the ledger row for allocating t to goal.
func NewAllocation(t Transaction, goal string) (SavingsAllocation, error) {
	g, err := CanonicalGoal(goal)
	if err != nil {
		return SavingsAllocation{}, err
	}
	a := SavingsAllocation{
		Timestamp:   t.instant(),
		Description: strings.TrimSpace(t.UserCategory),
		Amount:      t.Amount,
		Goal:        g,
	}
	return a, a.Validate()
}

// SavingsSummary aggregates the savings ledger.
type SavingsSummary struct {
	Total          Money
	MonthlyAverage Money
	ByGoal         []CategoryAmount
	ByMonth        []MonthAmount
}

// SummarizeSavings totals the ledger overall, per goal (ordered by goal
// name) and per month. MonthlyAverage is the mean of the monthly totals.
func SummarizeSavings(ledger []SavingsAllocation) SavingsSummary {
	var s SavingsSummary
	goals := newSumByKey()
	months := map[Month]int64{}
	for _, a := range ledger {
		s.Total = s.Total.Add(a.Amount)
		goals.add(a.Goal, a.Amount.Cents)
		if !a.Timestamp.IsZero() {
			months[MonthOf(a.Timestamp)] += a.Amount.Cents
		}
	}
	s.ByGoal = goals.sorted()
	for m, c := range months {
		s.ByMonth = append(s.ByMonth, MonthAmount{Month: m, Amount: Money{Cents: c}})
	}
	sortMonths(s.ByMonth)
	s.MonthlyAverage = averageMonths(s.ByMonth)
	return s
}

func averageMonths(ms []MonthAmount) Money {
	if len(ms) == 0 {
		return Money{}
	}
	var sum int64
	for _, m := range ms {
		sum += m.Amount.Cents
	}
	return Money{Cents: sum / int64(len(ms))}
}

// SortByTimestamp orders transactions oldest first, keeping sheet order
// for ties.
func SortByTimestamp(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Timestamp.Before(txns[j].Timestamp) })
}
