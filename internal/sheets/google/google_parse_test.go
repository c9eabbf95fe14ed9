package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestColumnLetter(t *testing.T) {
	cases := map[int]string{1: "A", 2: "B", 26: "Z", 27: "AA", 28: "AB", 52: "AZ", 53: "BA", 702: "ZZ", 703: "AAA"}
	for in, want := range cases {
		assert.Equal(t, want, columnLetter(in), "col %d", in)
	}
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "abc", cellString(" abc "))
	assert.Equal(t, "1234.5", cellString(1234.5))
	assert.Equal(t, "100000", cellString(float64(100000)))
	assert.Equal(t, "true", cellString(true))
}

func TestToTable(t *testing.T) {
	tbl := toTable("budget", [][]any{
		{"month_year", "person", "category", "budgeted"},
		{"2024-03", "Nithya", "Food", 5000.0},
		{"2024-03", "Divyaraj"},
	})
	assert.Equal(t, "budget", tbl.Name)
	assert.Equal(t, []string{"month_year", "person", "category", "budgeted"}, tbl.Header)
	assert.Equal(t, [][]string{{"2024-03", "Nithya", "Food", "5000"}, {"2024-03", "Divyaraj"}}, tbl.Rows)

	empty := toTable("x", nil)
	assert.Empty(t, empty.Header)
	assert.Empty(t, empty.Rows)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'bank_transactions'", quoteSheet("bank_transactions"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusBadRequest, Message: "Unable to parse range: 'nope'"})))
	assert.False(t, isNotFound(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("boom")))
}
