package sheets

import (
	"strings"

	"fintrack/internal/core"
)

// columns resolves header positions once per table.
type columns struct {
	idx map[string]int
}

func (t Table) columns() columns {
	c := columns{idx: make(map[string]int, len(t.Header))}
	for i, h := range t.Header {
		k := strings.ToLower(strings.TrimSpace(h))
		if _, dup := c.idx[k]; !dup {
			c.idx[k] = i
		}
	}
	return c
}

func (c columns) get(row []string, name string) string {
	i, ok := c.idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// DecodeIncome converts the income sheet. Rows with an unreadable month
// or amount are skipped.
func DecodeIncome(t Table) []core.IncomeEntry {
	c := t.columns()
	var out []core.IncomeEntry
	for _, row := range t.Rows {
		m, err := core.ParseMonth(c.get(row, ColMonthYear))
		if err != nil {
			continue
		}
		amt, err := core.ParseAmount(c.get(row, ColIncome))
		if err != nil {
			continue
		}
		out = append(out, core.IncomeEntry{
			Month:    m,
			Person:   c.get(row, ColPerson),
			Category: c.get(row, ColCategory),
			Amount:   amt,
		})
	}
	return out
}

// DecodeBudget converts the budget sheet. Rows with an unreadable month
// or amount are skipped.
func DecodeBudget(t Table) []core.BudgetEntry {
	c := t.columns()
	var out []core.BudgetEntry
	for _, row := range t.Rows {
		m, err := core.ParseMonth(c.get(row, ColMonthYear))
		if err != nil {
			continue
		}
		amt, err := core.ParseAmount(c.get(row, ColBudgeted))
		if err != nil {
			continue
		}
		out = append(out, core.BudgetEntry{
			Month:    m,
			Person:   c.get(row, ColPerson),
			Category: c.get(row, ColCategory),
			Amount:   amt,
		})
	}
	return out
}

// DecodeTransactions converts a bank or card sheet. Every non-blank row
// is kept with its position so it can be edited later; an unreadable
// amount decodes as zero and an unreadable timestamp as the zero time.
func DecodeTransactions(t Table, src core.Source) []core.Transaction {
	c := t.columns()
	acctCol, instCol := ColAccount, ColBankName
	if src == core.SourceCard {
		acctCol, instCol = ColCardNumber, ColCardName
	}
	var out []core.Transaction
	for pos, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		tx := core.Transaction{
			Source:       src,
			Position:     pos,
			Type:         core.TxnType(strings.ToLower(c.get(row, ColType))),
			Category:     c.get(row, ColCategory),
			UserCategory: c.get(row, ColMyCategory),
			Person:       c.get(row, ColPerson),
			Account:      c.get(row, acctCol),
			Institution:  c.get(row, instCol),
			Merchant:     c.get(row, ColMerchant),
			Notes:        c.get(row, ColNotes),
		}
		tx.Timestamp, _ = core.ParseTimestamp(c.get(row, ColTimestamp))
		tx.Instant, _ = core.ParseInstant(c.get(row, ColTimestamp))
		tx.Amount, _ = core.ParseAmount(c.get(row, ColAmount))
		if src == core.SourceBank {
			if bal, err := core.ParseAmount(c.get(row, ColBalance)); err == nil {
				tx.Balance, tx.HasBalance = bal, true
			}
		}
		out = append(out, tx)
	}
	return out
}

// DecodeSavings converts the savings ledger. Rows with an unreadable
// timestamp or amount are skipped.
func DecodeSavings(t Table) []core.SavingsAllocation {
	c := t.columns()
	var out []core.SavingsAllocation
	for _, row := range t.Rows {
		ts, err := core.ParseInstant(c.get(row, ColTimestamp))
		if err != nil {
			continue
		}
		amt, err := core.ParseAmount(c.get(row, ColAmount))
		if err != nil {
			continue
		}
		out = append(out, core.SavingsAllocation{
			Timestamp:   ts,
			Description: c.get(row, ColDescription),
			Amount:      amt,
			Goal:        c.get(row, ColAllocatedTo),
		})
	}
	return out
}

// EncodeIncome returns the income sheet row for e.
func EncodeIncome(e core.IncomeEntry) []string {
	return []string{e.Month.String(), e.Person, e.Category, e.Amount.CellString()}
}

// EncodeBudget returns the budget sheet row for e.
func EncodeBudget(e core.BudgetEntry) []string {
	return []string{e.Month.String(), e.Person, e.Category, e.Amount.CellString()}
}

// EncodeSavings returns the savings ledger row for a.
func EncodeSavings(a core.SavingsAllocation) []string {
	return []string{
		a.Timestamp.Format(core.LedgerTimestampLayout),
		a.Description,
		a.Amount.CellString(),
		a.Goal,
	}
}
