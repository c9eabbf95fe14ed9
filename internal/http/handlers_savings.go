package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type savingsView struct {
	page
	services.SavingsOverview
	Goals   []string
	MaxGoal core.Money
	Message string
}

func (s *Server) handleSavings(w http.ResponseWriter, r *http.Request) {
	v, err := s.savingsView(r)
	if err != nil {
		s.fail(w, r, "Savings load failed", err, InternalServerError("Could not load data from the spreadsheet"))
		return
	}
	s.render(w, r, "savings.html", v)
}

func (s *Server) savingsView(r *http.Request) (savingsView, error) {
	o, err := s.svc.Savings.Overview(r.Context())
	if err != nil {
		return savingsView{}, err
	}
	v := savingsView{page: s.page("Savings", "savings"), SavingsOverview: o, Goals: core.SavingsGoals}
	for _, g := range o.Summary.ByGoal {
		if g.Amount.Cents > v.MaxGoal.Cents {
			v.MaxGoal = g.Amount
		}
	}
	return v, nil
}

// handleAllocate records one pending savings transaction against a goal
// and re-renders the savings panel.
func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, "Parse form error", err, BadRequestError("Malformed request"))
		return
	}
	position, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("position")))
	if err != nil || position < 0 {
		s.fail(w, r, "Invalid savings position", err, BadRequestError("Invalid transaction reference"))
		return
	}
	goal := sanitizeInput(r.PostForm.Get("goal"))

	alloc, err := s.svc.Savings.Allocate(r.Context(), position, goal)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrUnknownGoal):
		s.fail(w, r, "Unknown savings goal", err, UnprocessableEntityError("Choose one of the savings goals"))
		return
	case errors.Is(err, services.ErrNotSavings):
		s.fail(w, r, "Allocation of non savings row", err, UnprocessableEntityError("That transaction is not marked as savings"))
		return
	case errors.Is(err, core.ErrAlreadyAllocated):
		s.fail(w, r, "Duplicate allocation", err, ConflictError("That transaction is already allocated"))
		return
	case errors.Is(err, services.ErrRowOutOfRange):
		s.fail(w, r, "Savings row missing", err, NotFoundError("Transaction not found. Reload and try again."))
		return
	default:
		s.fail(w, r, "Allocation failed", err, InternalServerError("Could not save to the spreadsheet"))
		return
	}

	v, err := s.savingsView(r)
	if err != nil {
		s.fail(w, r, "Savings reload failed", err, InternalServerError("Saved, but could not reload savings"))
		return
	}
	v.Message = fmt.Sprintf("Allocated %s to %s", formatRupees(alloc.Amount), alloc.Goal)
	setTrigger(w, EventSavingsAllocated, map[string]string{"goal": alloc.Goal, "amount": alloc.Amount.CellString()})
	s.render(w, r, "savings_panel", v)
}
