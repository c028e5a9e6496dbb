// Package xlsx persists the player sheet in an Excel workbook.
//
// Only columns A..E of the active worksheet belong to the table. The rest of
// the workbook (styles, the summary formulas written by Generate) is carried
// over untouched on every save because the file is reopened and rewritten
// as a whole.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/prosettings-sheet/internal/sheet"
)

// ErrNoWorkbook is returned when the workbook file does not exist yet.
var ErrNoWorkbook = errors.New("workbook not found (run generate first)")

// Store reads and writes one workbook file.
type Store struct {
	path string
}

// New returns a store for path. The file is not touched until Load or Save.
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("workbook path is required")
	}
	return &Store{path: path}, nil
}

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

// Load reads columns A..E of the active sheet.
func (s *Store) Load(ctx context.Context) (*sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only handle

	name := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	t := &sheet.Table{Rows: make([][]string, len(rows))}
	for i, row := range rows {
		if len(row) > sheet.Width {
			row = row[:sheet.Width]
		}
		t.Rows[i] = append([]string(nil), row...)
	}
	if len(t.Rows) == 0 {
		t = sheet.NewTable()
	}
	return t, nil
}

// Save writes every row of t into columns A..E and replaces the file.
func (s *Store) Save(ctx context.Context, t *sheet.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // replaced by SaveAs below

	name := f.GetSheetName(f.GetActiveSheetIndex())
	for i, row := range t.Rows {
		for col := 0; col < sheet.Width && col < len(row); col++ {
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(name, cell, cellValue(i, col, row[col])); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	return s.replace(f)
}

func (s *Store) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrNoWorkbook)
		}
		return nil, fmt.Errorf("open workbook %s: %w", s.path, err)
	}
	return f, nil
}

// replace writes to a sibling temp file and renames it over the workbook so
// readers never observe a half-written file.
func (s *Store) replace(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".prosheet-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := f.SaveAs(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("save workbook: %w", err)
	}
	// CreateTemp uses 0600; keep the workbook's own permissions.
	if info, err := os.Stat(s.path); err == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("chmod temp workbook: %w", err)
		}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

// cellValue stores eDPI as a number so the summary formulas can average it.
func cellValue(row, col int, v string) any {
	if row == 0 || col != 1 || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
