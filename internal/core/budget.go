package core

// Preload maps person -> category -> amount.
type Preload map[string]map[string]Money

// Amount returns the preloaded value for person and category, matched
// case-insensitively.
func (p Preload) Amount(person, category string) Money {
	for name, cats := range p {
		if !SameKey(name, person) {
			continue
		}
		for c, m := range cats {
			if SameKey(c, category) {
				return m
			}
		}
	}
	return Money{}
}

// LatestMonth returns the newest month among ms, or the zero Month.
func LatestMonth(ms []Month) Month {
	var latest Month
	for _, m := range ms {
		if latest.IsZero() || latest.Before(m) {
			latest = m
		}
	}
	return latest
}

// PreloadIncome groups the income rows of the latest month on file.
func PreloadIncome(entries []IncomeEntry) (Month, Preload) {
	months := make([]Month, 0, len(entries))
	for _, e := range entries {
		months = append(months, e.Month)
	}
	latest := LatestMonth(months)
	p := Preload{}
	for _, e := range entries {
		if e.Month == latest && !latest.IsZero() {
			p.add(e.Person, e.Category, e.Amount)
		}
	}
	return latest, p
}

// PreloadBudget groups the budget rows of the latest month on file.
func PreloadBudget(entries []BudgetEntry) (Month, Preload) {
	months := make([]Month, 0, len(entries))
	for _, e := range entries {
		months = append(months, e.Month)
	}
	latest := LatestMonth(months)
	p := Preload{}
	for _, e := range entries {
		if e.Month == latest && !latest.IsZero() {
			p.add(e.Person, e.Category, e.Amount)
		}
	}
	return latest, p
}

func (p Preload) add(person, category string, m Money) {
	cats, ok := p[person]
	if !ok {
		cats = map[string]Money{}
		p[person] = cats
	}
	cats[category] = cats[category].Add(m)
}

// PlanLine is one budget line with its share of the person's income.
type PlanLine struct {
	Category        string
	Budgeted        Money
	PercentOfIncome float64
}

// PersonPlan summarises one person's plan for a month.
type PersonPlan struct {
	Person        string
	TotalIncome   Money
	TotalBudgeted Money
	Remaining     Money
	OverBudget    bool
	Lines         []PlanLine
}

// PlanSummary builds a plan per person for month m. Budget lines keep
// the order of BudgetCategories, then any other category by name.
func PlanSummary(m Month, people []string, income []IncomeEntry, budgets []BudgetEntry) []PersonPlan {
	out := make([]PersonPlan, 0, len(people))
	for _, person := range people {
		f := Filter{Person: person, Month: m}
		pp := PersonPlan{Person: person}
		for _, e := range income {
			if f.MatchesPerson(e.Person) && f.MatchesMonth(e.Month) {
				pp.TotalIncome = pp.TotalIncome.Add(e.Amount)
			}
		}
		lines := newSumByKey()
		for _, c := range BudgetCategories {
			lines.add(c, 0)
		}
		for _, b := range budgets {
			if f.MatchesPerson(b.Person) && f.MatchesMonth(b.Month) {
				lines.add(b.Category, b.Amount.Cents)
				pp.TotalBudgeted = pp.TotalBudgeted.Add(b.Amount)
			}
		}
		extra := newSumByKey()
		for _, k := range lines.order[len(BudgetCategories):] {
			extra.add(lines.names[k], lines.totals[k])
		}
		for _, k := range lines.order[:len(BudgetCategories)] {
			pp.Lines = append(pp.Lines, planLine(lines.names[k], Money{Cents: lines.totals[k]}, pp.TotalIncome))
		}
		for _, ca := range extra.sorted() {
			pp.Lines = append(pp.Lines, planLine(ca.Name, ca.Amount, pp.TotalIncome))
		}
		pp.Remaining = pp.TotalIncome.Sub(pp.TotalBudgeted)
		pp.OverBudget = pp.TotalBudgeted.Cents > pp.TotalIncome.Cents
		out = append(out, pp)
	}
	return out
}

func planLine(category string, budgeted, income Money) PlanLine {
	return PlanLine{Category: category, Budgeted: budgeted, PercentOfIncome: PercentUsed(budgeted, income)}
}
