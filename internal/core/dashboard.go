package core

import "strings"

// KPIs are the headline figures of the dashboard.
type KPIs struct {
	NetWorth           Money
	AvgMonthlyExpense  Money
	CurrentBankBalance Money
	CardExpenses       Money
}

// ComputeKPIs derives the dashboard figures from both statement sheets.
// Balances are taken in sheet order: the last non-empty balance of each
// account counts towards net worth, the last one overall is the current
// balance.
func ComputeKPIs(bank, card []Transaction) KPIs {
	var k KPIs
	latest := map[string]Money{}
	var accounts []string
	for _, t := range bank {
		if !t.HasBalance {
			continue
		}
		acct := strings.TrimSpace(t.Account)
		if _, ok := latest[acct]; !ok {
			accounts = append(accounts, acct)
		}
		latest[acct] = t.Balance
		k.CurrentBankBalance = t.Balance
	}
	for _, a := range accounts {
		k.NetWorth = k.NetWorth.Add(latest[a])
	}
	k.AvgMonthlyExpense = averageMonths(MonthlyTrend(bank))
	for _, t := range card {
		if t.IsDebit() {
			k.CardExpenses = k.CardExpenses.Add(t.Amount)
		}
	}
	return k
}

// CategoryBreakdown sums debits per effective category for the filter,
// ordered by category name.
func CategoryBreakdown(f Filter, txns []Transaction) []CategoryAmount {
	s := newSumByKey()
	for _, t := range txns {
		if !t.IsDebit() || !f.MatchesPerson(t.Person) || t.Timestamp.IsZero() {
			continue
		}
		if !f.MatchesMonth(MonthOf(t.Timestamp)) {
			continue
		}
		s.add(t.EffectiveCategory(), t.Amount.Cents)
	}
	return s.sorted()
}

// MonthlyTrend sums debits per month, oldest first. Transactions without
// a timestamp are skipped.
func MonthlyTrend(txns []Transaction) []MonthAmount {
	byMonth := map[Month]int64{}
	for _, t := range txns {
		if !t.IsDebit() || t.Timestamp.IsZero() {
			continue
		}
		byMonth[MonthOf(t.Timestamp)] += t.Amount.Cents
	}
	out := make([]MonthAmount, 0, len(byMonth))
	for m, c := range byMonth {
		out = append(out, MonthAmount{Month: m, Amount: Money{Cents: c}})
	}
	sortMonths(out)
	return out
}

// FilterTransactions keeps the transactions passing f.
func FilterTransactions(f Filter, txns []Transaction) []Transaction {
	var out []Transaction
	for _, t := range txns {
		if !f.MatchesPerson(t.Person) {
			continue
		}
		if !f.Month.IsZero() && !f.Month.Contains(t.Timestamp) {
			continue
		}
		out = append(out, t)
	}
	return out
}
