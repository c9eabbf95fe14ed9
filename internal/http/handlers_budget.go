package http

import (
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

const (
	planIncome = "income"
	planBudget = "budget"
)

type planInput struct {
	Name     string
	Category string
	Value    string
}

type personForm struct {
	Person string
	Income []planInput
	Budget []planInput
}

type budgetView struct {
	page
	Plan  services.BudgetPlan
	Forms []personForm
}

func (s *Server) handleBudgeting(w http.ResponseWriter, r *http.Request) {
	m, err := ParseMonthParam(r.URL.Query().Get("month"), core.MonthOf(s.now()))
	if err != nil {
		s.fail(w, r, "Invalid planner month", err, BadRequestError("Invalid month"))
		return
	}
	plan, err := s.svc.Budget.Plan(r.Context(), m)
	if err != nil {
		s.fail(w, r, "Planner load failed", err, InternalServerError("Could not load data from the spreadsheet"))
		return
	}

	forms := make([]personForm, 0, len(plan.People))
	for _, p := range plan.People {
		pf := personForm{Person: p}
		for _, e := range plan.DraftIncome {
			if e.Person == p {
				pf.Income = append(pf.Income, planInput{Name: fieldName(planIncome, p, e.Category), Category: e.Category, Value: e.Amount.CellString()})
			}
		}
		for _, e := range plan.DraftBudget {
			if e.Person == p {
				pf.Budget = append(pf.Budget, planInput{Name: fieldName(planBudget, p, e.Category), Category: e.Category, Value: e.Amount.CellString()})
			}
		}
		forms = append(forms, pf)
	}
	s.render(w, r, "budgeting.html", budgetView{page: s.page("Budget planner", "budgeting"), Plan: plan, Forms: forms})
}

func (s *Server) handleSubmitIncome(w http.ResponseWriter, r *http.Request) {
	s.submitPlan(w, r, planIncome)
}

func (s *Server) handleSubmitBudget(w http.ResponseWriter, r *http.Request) {
	s.submitPlan(w, r, planBudget)
}

// submitPlan appends one row per person and category of kind for the
// posted month.
func (s *Server) submitPlan(w http.ResponseWriter, r *http.Request, kind string) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, "Parse form error", err, BadRequestError("Malformed request"))
		return
	}
	m, err := ParseMonthParam(r.PostForm.Get("month"), core.Month{})
	if err == nil && m.IsZero() {
		err = core.ErrInvalidMonth
	}
	if err != nil {
		s.fail(w, r, "Invalid planner month", err, UnprocessableEntityError("Choose a month"))
		return
	}

	people := s.svc.Budget.People()
	categories := core.BudgetCategories
	if kind == planIncome {
		categories = core.IncomeCategories
	}
	amounts, err := ParsePlanAmounts(r.PostForm, kind, people, categories)
	if err != nil {
		var fe *FieldError
		msg := "Invalid amount"
		if errors.As(err, &fe) {
			msg = "Invalid amount for " + fe.Field
		}
		s.fail(w, r, "Invalid planner amount", err, UnprocessableEntityError(msg))
		return
	}

	var ref string
	rows := len(people) * len(categories)
	if kind == planIncome {
		entries := make([]core.IncomeEntry, 0, rows)
		for _, p := range people {
			for _, c := range categories {
				entries = append(entries, core.IncomeEntry{Month: m, Person: p, Category: c, Amount: amounts[[2]string{p, c}]})
			}
		}
		ref, err = s.svc.Budget.SubmitIncome(r.Context(), entries)
	} else {
		entries := make([]core.BudgetEntry, 0, rows)
		for _, p := range people {
			for _, c := range categories {
				entries = append(entries, core.BudgetEntry{Month: m, Person: p, Category: c, Amount: amounts[[2]string{p, c}]})
			}
		}
		ref, err = s.svc.Budget.SubmitBudget(r.Context(), entries)
	}
	if err != nil {
		s.fail(w, r, "Planner submit failed", err, InternalServerError("Could not save to the spreadsheet"))
		return
	}

	SuccessResponse(fmt.Sprintf("Saved %d %s rows for %s", rows, kind, m)).
		Trigger(EventPlanSaved, map[string]string{"kind": kind, "month": m.String(), "ref": ref}).
		Write(w)
}
