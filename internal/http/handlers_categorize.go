package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type categorizeView struct {
	page
	Pending []core.Transaction
	Options []string
	Message string
}

func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	v, err := s.categorizeView(r)
	if err != nil {
		s.fail(w, r, "Pending categories load failed", err, InternalServerError("Could not load data from the spreadsheet"))
		return
	}
	s.render(w, r, "categorize.html", v)
}

func (s *Server) categorizeView(r *http.Request) (categorizeView, error) {
	pending, err := s.svc.Categorize.Pending(r.Context())
	if err != nil {
		return categorizeView{}, err
	}
	return categorizeView{
		page:    s.page("Categorise transactions", "categorize"),
		Pending: pending,
		Options: core.CategoryOptions,
	}, nil
}

// handleSaveCategories writes the selected categories and re-renders
// the pending list.
func (s *Server) handleSaveCategories(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, "Parse form error", err, BadRequestError("Malformed request"))
		return
	}
	assignments, err := ParseAssignments(r.PostForm)
	if err != nil {
		s.fail(w, r, "Invalid category form", err, BadRequestError("Malformed category selection"))
		return
	}
	if len(assignments) == 0 {
		UnprocessableEntityError("Select a category for at least one transaction").Write(w)
		return
	}

	n, err := s.svc.Categorize.Save(r.Context(), assignments)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrUnknownCategory), errors.Is(err, core.ErrEmptyCategory):
		s.fail(w, r, "Invalid category", err, UnprocessableEntityError("Unknown category"))
		return
	case errors.Is(err, services.ErrRowOutOfRange):
		s.fail(w, r, "Category row missing", err, ConflictError("The sheet changed since the page was loaded. Reload and try again."))
		return
	default:
		s.fail(w, r, "Category save failed", err, InternalServerError(fmt.Sprintf("Saved %d categories before an error", n)))
		return
	}

	v, err := s.categorizeView(r)
	if err != nil {
		s.fail(w, r, "Pending categories reload failed", err, InternalServerError("Saved, but could not reload the list"))
		return
	}
	v.Message = fmt.Sprintf("Saved %d categories", n)
	setTrigger(w, EventCategoriesSaved, map[string]int{"saved": n})
	s.render(w, r, "categorize_list", v)
}

// setTrigger sets HX-Trigger for responses rendered from templates.
func setTrigger(w http.ResponseWriter, name string, data any) {
	if b, err := json.Marshal(map[string]any{name: data}); err == nil {
		w.Header().Set("HX-Trigger", string(b))
	}
}
