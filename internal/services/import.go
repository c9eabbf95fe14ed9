package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/importer"
	"fintrack/internal/sheets"
)

// ImportResult describes one appended statement.
type ImportResult struct {
	BatchID string
	Sheet   string
	Rows    int
	Ref     string
}

type ImportService struct {
	store sheets.RowAppender
}

func NewImportService(store sheets.RowAppender) *ImportService {
	return &ImportService{store: store}
}

// Import validates a statement CSV and appends all of its rows, tagged
// with person, to the statement sheet in one batch.
func (s *ImportService) Import(ctx context.Context, kind importer.Kind, person string, r io.Reader) (ImportResult, error) {
	person = strings.TrimSpace(person)
	if person == "" {
		return ImportResult{}, core.ErrEmptyPerson
	}
	st, err := importer.Parse(r, kind)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{BatchID: uuid.NewString(), Sheet: kind.Sheet(), Rows: len(st.Rows)}
	logger := slog.With("batch_id", res.BatchID, "sheet", res.Sheet, "person", person)
	if res.Rows == 0 {
		logger.InfoContext(ctx, "Statement has no data rows")
		return res, nil
	}

	res.Ref, err = s.store.AppendRows(ctx, res.Sheet, st.Enrich(person))
	if err != nil {
		return ImportResult{}, fmt.Errorf("append %s rows: %w", res.Sheet, err)
	}
	logger.InfoContext(ctx, "Statement imported", "rows", res.Rows, "sheets_ref", res.Ref)
	return res, nil
}
