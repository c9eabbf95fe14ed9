package http

import (
	"html/template"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// formatRupees renders m as "₹1,234.50".
func formatRupees(m core.Money) string {
	s := m.Decimal().StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "₹" + b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// formatPercent renders p with one decimal.
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

// barWidth scales v against top into 0..100, keeping non-zero values
// visible.
func barWidth(v, top core.Money) int {
	if top.Cents <= 0 || v.Cents <= 0 {
		return 0
	}
	w := int((v.Cents*100 + top.Cents/2) / top.Cents)
	switch {
	case w < 2:
		return 2
	case w > 100:
		return 100
	}
	return w
}

// fieldName names a planner input for person and category.
func fieldName(kind, person, category string) string {
	return kind + "|" + person + "|" + category
}

// sanitizeInput trims s and removes control characters other than tab
// and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

var templateFuncs = template.FuncMap{
	"rupees":  formatRupees,
	"percent": formatPercent,
	"bar":     barWidth,
	"field":   fieldName,
	"ts": func(t core.Transaction) string {
		if t.Timestamp.IsZero() {
			return ""
		}
		return t.Timestamp.Format("2006-01-02 15:04")
	},
}
