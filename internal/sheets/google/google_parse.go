package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	ports "fintrack/internal/sheets"

	"google.golang.org/api/googleapi"
)

// toTable splits a values matrix into header and data rows.
func toTable(name string, values [][]any) ports.Table {
	t := ports.Table{Name: name}
	if len(values) == 0 {
		return t
	}
	t.Header = toStrings(values[0])
	t.Rows = make([][]string, 0, len(values)-1)
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders an unformatted cell value. Floats use the shortest
// exact representation so 1234.5 does not become 1234.500000.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		vals := make([]any, len(r))
		for j, c := range r {
			vals[j] = c
		}
		out[i] = vals
	}
	return out
}

// columnLetter converts a 1-based column number into A1 letters.
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// quoteSheet quotes a sheet name for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusNotFound {
		return true
	}
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")
}
