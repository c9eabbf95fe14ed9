package sheets

import "strings"

// HeaderRow is the sheet row number of the header.
const HeaderRow = 1

// RowNumber converts a 0-based data row position into a 1-based sheet
// row number.
func RowNumber(position int) int {
	return position + 2
}

// Index returns the 0-based index of column in the header, matched
// case-insensitively after trimming, or -1.
func (t Table) Index(column string) int {
	want := strings.ToLower(strings.TrimSpace(column))
	for i, h := range t.Header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// ColumnNumber returns the 1-based sheet column holding column. When the
// header lacks it, the first free column after the header is returned
// and ok is false.
func (t Table) ColumnNumber(column string) (col int, ok bool) {
	if i := t.Index(column); i >= 0 {
		return i + 1, true
	}
	return len(t.Header) + 1, false
}

// Get returns the trimmed cell of row under column, or "".
func (t Table) Get(row []string, column string) string {
	i := t.Index(column)
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := Table{Name: t.Name, Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// SetCell writes value at the 1-based row and col, growing the table as
// needed. Row 1 is the header.
func (t *Table) SetCell(row, col int, value string) {
	r := t.rowRef(row)
	for len(*r) < col {
		*r = append(*r, "")
	}
	(*r)[col-1] = value
}

// SetRow replaces the 1-based row, growing the table as needed.
func (t *Table) SetRow(row int, cells []string) {
	*t.rowRef(row) = append([]string(nil), cells...)
}

func (t *Table) rowRef(row int) *[]string {
	if row == HeaderRow {
		return &t.Header
	}
	for len(t.Rows) < row-1 {
		t.Rows = append(t.Rows, nil)
	}
	return &t.Rows[row-2]
}
