package http

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// ParseFilter reads the person and month query parameters. A missing
// person selects everyone; a missing month is the zero Month.
func ParseFilter(q url.Values) (core.Filter, error) {
	f := core.Filter{Person: sanitizeInput(q.Get("person"))}
	if f.Person == "" {
		f.Person = core.AllPeople
	}
	m, err := ParseMonthParam(q.Get("month"), core.Month{})
	if err != nil {
		return core.Filter{}, err
	}
	f.Month = m
	return f, nil
}

// ParseMonthParam parses a YYYY-MM parameter, returning def when v is
// blank.
func ParseMonthParam(v string, def core.Month) (core.Month, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return def, nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return core.Month{}, fmt.Errorf("month %q: %w", v, err)
	}
	return m, nil
}

// FieldError names the form field that failed to parse.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

// ParsePlanAmounts reads one amount per person and category from the
// planner form. Blank inputs count as zero.
func ParsePlanAmounts(form url.Values, kind string, people, categories []string) (map[[2]string]core.Money, error) {
	out := make(map[[2]string]core.Money, len(people)*len(categories))
	for _, p := range people {
		for _, c := range categories {
			name := fieldName(kind, p, c)
			raw := strings.TrimSpace(form.Get(name))
			var m core.Money
			if raw != "" {
				cents, err := core.ParseDecimalToCents(raw)
				if err != nil {
					return nil, &FieldError{Field: p + " / " + c, Err: err}
				}
				m = core.Money{Cents: cents}
			}
			out[[2]string{p, c}] = m
		}
	}
	return out, nil
}

// ParseAssignments collects the category selections of the
// categorisation form. Fields are named "cat:<source>:<position>"; empty
// selections are skipped.
func ParseAssignments(form url.Values) ([]services.Assignment, error) {
	var out []services.Assignment
	for name, values := range form {
		rest, ok := strings.CutPrefix(name, "cat:")
		if !ok || len(values) == 0 {
			continue
		}
		category := sanitizeInput(values[len(values)-1])
		if category == "" {
			continue
		}
		src, pos, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, &FieldError{Field: name, Err: errors.New("malformed field")}
		}
		source := core.Source(src)
		if source != core.SourceBank && source != core.SourceCard {
			return nil, &FieldError{Field: name, Err: fmt.Errorf("unknown source %q", src)}
		}
		position, err := strconv.Atoi(pos)
		if err != nil || position < 0 {
			return nil, &FieldError{Field: name, Err: fmt.Errorf("bad position %q", pos)}
		}
		out = append(out, services.Assignment{Source: source, Position: position, Category: category})
	}
	sortAssignments(out)
	return out, nil
}

// sortAssignments orders by source then position so writes happen in
// sheet order.
func sortAssignments(as []services.Assignment) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].Source != as[j].Source {
			return as[i].Source < as[j].Source
		}
		return as[i].Position < as[j].Position
	})
}
