package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fintrack/internal/sheets"
)

// Store is an in-process workbook. It starts with every known sheet
// holding only its header.
type Store struct {
	mu     sync.Mutex
	tables map[string]*sheets.Table
}

var (
	_ sheets.Workbook  = (*Store)(nil)
	_ sheets.RowWriter = (*Store)(nil)
)

func New() *Store {
	s := &Store{tables: map[string]*sheets.Table{}}
	for _, name := range sheets.AllSheets() {
		s.tables[name] = &sheets.Table{Name: name, Header: sheets.Columns(name)}
	}
	return s
}

// NewFromDir seeds the store from <dir>/<sheet>.csv files. The first CSV
// record is the header. Missing files leave the default header.
func NewFromDir(dir string) (*Store, error) {
	s := New()
	for _, name := range sheets.AllSheets() {
		path := filepath.Join(dir, name+".csv")
		records, err := readCSV(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
		if len(records) == 0 {
			continue
		}
		s.tables[name] = &sheets.Table{Name: name, Header: records[0], Rows: records[1:]}
	}
	return s, nil
}

// Seed replaces the content of sheet.
func (s *Store) Seed(t sheets.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := t.Clone()
	s.tables[t.Name] = &c
}

func (s *Store) ReadTable(_ context.Context, sheet string) (sheets.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[sheet]
	if !ok {
		return sheets.Table{}, fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	return t.Clone(), nil
}

// AppendRows stores the rows and returns a synthetic row reference.
func (s *Store) AppendRows(_ context.Context, sheet string, rows [][]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[sheet]
	if !ok {
		return "", fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	first := sheets.RowNumber(len(t.Rows))
	for _, r := range rows {
		t.Rows = append(t.Rows, append([]string(nil), r...))
	}
	return fmt.Sprintf("mem:%s!%d:%d", sheet, first, first+len(rows)-1), nil
}

func (s *Store) UpdateCell(_ context.Context, sheet string, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("%w: row=%d col=%d", sheets.ErrInvalidCell, row, col)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[sheet]
	if !ok {
		return fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	t.SetCell(row, col, value)
	return nil
}

// WriteRow overwrites row, growing the sheet when needed.
func (s *Store) WriteRow(_ context.Context, sheet string, row int, cells []string) error {
	if row < 1 {
		return fmt.Errorf("%w: row=%d", sheets.ErrInvalidCell, row)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[sheet]
	if !ok {
		t = &sheets.Table{Name: sheet}
		s.tables[sheet] = t
	}
	t.SetRow(row, cells)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
