package sheets

import (
	"context"
	"errors"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrInvalidCell   = errors.New("invalid cell reference")
)

// Table is the full content of one named sheet: the header row and the
// data rows below it. Rows may be shorter than the header.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Ports for outbound adapters.
type (
	TableReader interface {
		// ReadTable returns every row of sheet.
		ReadTable(ctx context.Context, sheet string) (Table, error)
	}

	RowAppender interface {
		// AppendRows appends rows after the last row of sheet and returns a
		// reference to the written range.
		AppendRows(ctx context.Context, sheet string, rows [][]string) (rowRef string, err error)
	}

	CellUpdater interface {
		// UpdateCell overwrites a single cell. row and col are 1-based
		// sheet coordinates; row 1 is the header.
		UpdateCell(ctx context.Context, sheet string, row, col int, value string) error
	}

	// RowWriter overwrites a whole row in place. Used to replay local
	// writes onto the remote spreadsheet.
	RowWriter interface {
		WriteRow(ctx context.Context, sheet string, row int, cells []string) error
	}

	// Pinger reports whether the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Workbook is the spreadsheet store used by the services.
	Workbook interface {
		TableReader
		RowAppender
		CellUpdater
	}
)
