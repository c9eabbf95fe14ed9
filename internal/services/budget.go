package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// BudgetPlan is the planner state for one month. The draft entries
// carry the amounts of the latest month on file into the selected
// month; Preview summarises the draft and Recorded what is already on
// file for the month.
type BudgetPlan struct {
	Month       core.Month
	People      []string
	IncomeMonth core.Month
	BudgetMonth core.Month
	DraftIncome []core.IncomeEntry
	DraftBudget []core.BudgetEntry
	Preview     []core.PersonPlan
	Recorded    []core.PersonPlan
}

type BudgetService struct {
	store  sheets.Workbook
	loader *Loader
	people []string
}

func NewBudgetService(store sheets.Workbook, people []string) *BudgetService {
	if len(people) == 0 {
		people = core.DefaultPeople
	}
	return &BudgetService{store: store, loader: NewLoader(store), people: people}
}

func (s *BudgetService) People() []string { return s.people }

// Plan loads the planner for month m.
func (s *BudgetService) Plan(ctx context.Context, m core.Month) (BudgetPlan, error) {
	snap, err := s.loader.Load(ctx, sheets.IncomeSheet, sheets.BudgetSheet)
	if err != nil {
		return BudgetPlan{}, err
	}
	p := BudgetPlan{Month: m, People: s.people}

	var income, budget core.Preload
	p.IncomeMonth, income = core.PreloadIncome(snap.Income)
	p.BudgetMonth, budget = core.PreloadBudget(snap.Budget)
	for _, person := range s.people {
		for _, c := range core.IncomeCategories {
			p.DraftIncome = append(p.DraftIncome, core.IncomeEntry{
				Month: m, Person: person, Category: c, Amount: income.Amount(person, c),
			})
		}
		for _, c := range core.BudgetCategories {
			p.DraftBudget = append(p.DraftBudget, core.BudgetEntry{
				Month: m, Person: person, Category: c, Amount: budget.Amount(person, c),
			})
		}
	}
	p.Preview = core.PlanSummary(m, s.people, p.DraftIncome, p.DraftBudget)
	p.Recorded = core.PlanSummary(m, s.people, snap.Income, snap.Budget)
	return p, nil
}

// SubmitIncome appends one income row per entry.
func (s *BudgetService) SubmitIncome(ctx context.Context, entries []core.IncomeEntry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return "", fmt.Errorf("income %s/%s: %w", e.Person, e.Category, err)
		}
		rows = append(rows, sheets.EncodeIncome(e))
	}
	return s.append(ctx, sheets.IncomeSheet, rows)
}

// SubmitBudget appends one budget row per entry.
func (s *BudgetService) SubmitBudget(ctx context.Context, entries []core.BudgetEntry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return "", fmt.Errorf("budget %s/%s: %w", e.Person, e.Category, err)
		}
		rows = append(rows, sheets.EncodeBudget(e))
	}
	return s.append(ctx, sheets.BudgetSheet, rows)
}

func (s *BudgetService) append(ctx context.Context, sheet string, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	ref, err := s.store.AppendRows(ctx, sheet, rows)
	if err != nil {
		return "", fmt.Errorf("append %s: %w", sheet, err)
	}
	slog.InfoContext(ctx, "Plan rows appended", "sheet", sheet, "rows", len(rows), "sheets_ref", ref)
	return ref, nil
}
