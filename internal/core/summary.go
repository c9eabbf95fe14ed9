package core

import (
	"sort"
	"strings"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthAmount is an amount aggregated by month.
type MonthAmount struct {
	Month  Month
	Amount Money
}

// sumByKey groups amounts by a case-insensitive key. The first spelling
// seen for a key is the one reported.
type sumByKey struct {
	names  map[string]string
	totals map[string]int64
	order  []string
}

func newSumByKey() *sumByKey {
	return &sumByKey{names: map[string]string{}, totals: map[string]int64{}}
}

func (s *sumByKey) add(name string, cents int64) {
	k := NormalizeKey(name)
	if _, ok := s.names[k]; !ok {
		s.names[k] = strings.TrimSpace(name)
		s.order = append(s.order, k)
	}
	s.totals[k] += cents
}

// sorted returns the groups ordered by name, case-insensitively.
func (s *sumByKey) sorted() []CategoryAmount {
	keys := append([]string(nil), s.order...)
	sort.Strings(keys)
	out := make([]CategoryAmount, 0, len(keys))
	for _, k := range keys {
		out = append(out, CategoryAmount{Name: s.names[k], Amount: Money{Cents: s.totals[k]}})
	}
	return out
}

func sortMonths(ms []MonthAmount) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Month.Before(ms[j].Month) })
}
