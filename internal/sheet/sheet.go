// Package sheet models the player sheet as an ordered table of rows and
// defines the Store that persists it. Row 0 is the header; rows 1..N hold
// profiles and are addressed by position.
package sheet

import (
	"context"
	"fmt"

	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

// Width is the number of profile columns.
const Width = 5

// Store loads and saves the whole table. There is no partial access.
type Store interface {
	Load(ctx context.Context) (*Table, error)
	Save(ctx context.Context, t *Table) error
}

// Table is the in-memory copy of the sheet.
type Table struct {
	Rows [][]string
}

// NewTable returns a table holding only the header row.
func NewTable() *Table {
	return &Table{Rows: [][]string{append([]string(nil), profile.Columns...)}}
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := &Table{Rows: make([][]string, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Key returns the key cell of row idx, or "" when the row is absent.
func (t *Table) Key(idx int) string {
	if idx < 0 || idx >= len(t.Rows) || len(t.Rows[idx]) == 0 {
		return ""
	}
	return t.Rows[idx][0]
}

// Keys lists the names from row 1 down to the first empty key cell.
func (t *Table) Keys() []string {
	var keys []string
	for i := 1; i < len(t.Rows); i++ {
		k := t.Key(i)
		if k == "" {
			break
		}
		keys = append(keys, k)
	}
	return keys
}

// Find returns the first data row whose key equals name exactly.
func (t *Table) Find(name string) (int, bool) {
	for i := 1; i < len(t.Rows); i++ {
		if t.Key(i) == name {
			return i, true
		}
	}
	return 0, false
}

// FirstEmpty returns the lowest data row with an empty key cell. When every
// row is used it is the row just past the end.
func (t *Table) FirstEmpty() int {
	for i := 1; i < len(t.Rows); i++ {
		if t.Key(i) == "" {
			return i
		}
	}
	if len(t.Rows) == 0 {
		return 1
	}
	return len(t.Rows)
}

// Put overwrites the profile columns of row idx, growing the table as needed.
// Cells past the profile columns are kept.
func (t *Table) Put(idx int, p profile.Profile) error {
	if idx < 1 {
		return fmt.Errorf("row %d is reserved for the header", idx)
	}
	for len(t.Rows) <= idx {
		t.Rows = append(t.Rows, nil)
	}
	row := t.Rows[idx]
	if len(row) < Width {
		row = append(row, make([]string, Width-len(row))...)
	}
	copy(row, p.Cells())
	t.Rows[idx] = row
	return nil
}

// ProfileAt parses row idx back into a profile.
func (t *Table) ProfileAt(idx int) (profile.Profile, error) {
	if idx < 1 || idx >= len(t.Rows) {
		return profile.Profile{}, fmt.Errorf("row %d out of range", idx)
	}
	return profile.FromCells(t.Rows[idx])
}

// Profiles returns every populated data row in order.
func (t *Table) Profiles() ([]profile.Profile, error) {
	var out []profile.Profile
	for i := 1; i < len(t.Rows); i++ {
		if t.Key(i) == "" {
			continue
		}
		p, err := t.ProfileAt(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
