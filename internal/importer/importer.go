// Package importer reads bank and credit card statement CSV files and
// turns them into rows for the statement sheets.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

var (
	ErrSchemaMismatch = errors.New("statement columns do not match the expected schema")
	ErrUnknownKind    = errors.New("unknown statement kind")
	ErrEmptyFile      = errors.New("statement file is empty")
)

// Kind is the statement type of an upload.
type Kind string

const (
	KindBank Kind = "bank"
	KindCard Kind = "card"
)

// ParseKind accepts "bank" or "card" (also "credit_card"), in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank", sheets.BankSheet:
		return KindBank, nil
	case "card", "credit", sheets.CardSheet:
		return KindCard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Sheet is the target sheet of the statement kind.
func (k Kind) Sheet() string {
	if k == KindCard {
		return sheets.CardSheet
	}
	return sheets.BankSheet
}

// Columns is the exact uploaded column list of the statement kind.
func (k Kind) Columns() []string {
	if k == KindCard {
		return sheets.CardImportColumns
	}
	return sheets.BankImportColumns
}

// SchemaError names the expected and received columns of a rejected
// upload.
type SchemaError struct {
	Kind     Kind
	Expected []string
	Received []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s statement: expected columns [%s], received [%s]",
		e.Kind, strings.Join(e.Expected, ", "), strings.Join(e.Received, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// Statement is a validated upload.
type Statement struct {
	Kind Kind
	Rows [][]string
}

// Parse reads a CSV statement and checks its header against the schema
// of kind. Header names are compared after trimming and lower-casing,
// in order. Blank lines are skipped; data rows are cut or padded to the
// schema width.
func Parse(r io.Reader, kind Kind) (Statement, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Statement{}, ErrEmptyFile
	}
	if err != nil {
		return Statement{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if err := checkHeader(kind, header); err != nil {
		return Statement{}, err
	}

	width := len(kind.Columns())
	st := Statement{Kind: kind}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Statement{}, fmt.Errorf("read row %d: %w", len(st.Rows)+2, err)
		}
		if blank(rec) {
			continue
		}
		row := make([]string, width)
		for i := 0; i < width && i < len(rec); i++ {
			row[i] = strings.TrimSpace(rec[i])
		}
		st.Rows = append(st.Rows, row)
	}
	return st, nil
}

func checkHeader(kind Kind, header []string) error {
	want := kind.Columns()
	got := make([]string, len(header))
	for i, h := range header {
		got[i] = strings.TrimSpace(h)
	}
	ok := len(got) == len(want)
	for i := 0; ok && i < len(want); i++ {
		ok = strings.EqualFold(got[i], want[i])
	}
	if !ok {
		return &SchemaError{Kind: kind, Expected: append([]string(nil), want...), Received: got}
	}
	return nil
}

// Enrich appends person, date, time and an empty my_category to every
// row, matching the sheet layout. Date and time come from
// txn_timestamp and stay empty when it cannot be parsed.
func (s Statement) Enrich(person string) [][]string {
	tsIdx := indexOf(s.Kind.Columns(), sheets.ColTimestamp)
	out := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		var date, clock string
		if ts, err := core.ParseTimestamp(row[tsIdx]); err == nil {
			date, clock = ts.Format("2006-01-02"), ts.Format("15:04:05")
		}
		enriched := make([]string, 0, len(row)+4)
		enriched = append(enriched, row...)
		enriched = append(enriched, person, date, clock, "")
		out = append(out, enriched)
	}
	return out
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
