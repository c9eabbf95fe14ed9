package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// page carries what the layout needs.
type page struct {
	Title  string
	Nav    string
	People []string
}

func (s *Server) page(title, nav string) page {
	return page{Title: title, Nav: nav, People: s.svc.Budget.People()}
}

// reconciliationView feeds the reconciliation partial.
type reconciliationView struct {
	services.ReconciliationView
	People []string
}

type dashboardView struct {
	page
	services.Dashboard
	Recon        reconciliationView
	MaxBreakdown core.Money
	MaxTrend     core.Money
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, "Invalid dashboard filter", err, BadRequestError("Invalid month"))
		return
	}
	d, err := s.svc.Dashboard.Dashboard(r.Context(), f)
	if err != nil {
		s.fail(w, r, "Dashboard load failed", err, InternalServerError("Could not load data from the spreadsheet"))
		return
	}

	v := dashboardView{
		page:      s.page("Dashboard", "dashboard"),
		Dashboard: d,
		Recon: reconciliationView{
			ReconciliationView: services.ReconciliationView{Reconciliation: d.Reconciliation, Months: d.Months},
			People:             s.svc.Budget.People(),
		},
	}
	for _, c := range d.Breakdown {
		if c.Amount.Cents > v.MaxBreakdown.Cents {
			v.MaxBreakdown = c.Amount
		}
	}
	for _, m := range d.Trend {
		if m.Amount.Cents > v.MaxTrend.Cents {
			v.MaxTrend = m.Amount
		}
	}
	s.render(w, r, "dashboard.html", v)
}

// handleReconciliation renders the reconciliation partial for the
// person and month selectors.
func (s *Server) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, "Invalid reconciliation filter", err, BadRequestError("Invalid month"))
		return
	}
	view, err := s.svc.Reconciliation.Reconcile(r.Context(), f)
	if err != nil {
		s.fail(w, r, "Reconciliation failed", err, InternalServerError("Could not load data from the spreadsheet"))
		return
	}
	s.render(w, r, "reconciliation", reconciliationView{ReconciliationView: view, People: s.svc.Budget.People()})
}

type trendPoint struct {
	Month  string      `json:"month"`
	Amount json.Number `json:"amount"`
}

// handleTrend returns monthly debit totals as JSON.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	person := sanitizeInput(r.URL.Query().Get("person"))
	if person == "" {
		person = core.AllPeople
	}
	trend, err := s.svc.Dashboard.Trend(r.Context(), person)
	if err != nil {
		s.fail(w, r, "Trend load failed", err, InternalServerError("Could not load data"))
		return
	}
	out := make([]trendPoint, 0, len(trend))
	for _, m := range trend {
		out = append(out, trendPoint{Month: m.Month.String(), Amount: json.Number(m.Amount.Decimal().StringFixed(2))})
	}
	writeJSON(w, http.StatusOK, out)
}
