// Package memory provides an in-process sheet.Store.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/prosettings-sheet/internal/sheet"
)

// Store keeps the table in memory and hands out deep copies.
type Store struct {
	mu      sync.Mutex
	table   *sheet.Table
	saveErr error
	saves   int
}

// New seeds the store with t, or with a header-only table when t is nil.
func New(t *sheet.Table) *Store {
	if t == nil {
		t = sheet.NewTable()
	}
	return &Store{table: t.Clone()}
}

// Load returns a copy of the current table.
func (s *Store) Load(ctx context.Context) (*sheet.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone(), nil
}

// Save replaces the table unless a save error has been injected.
func (s *Store) Save(ctx context.Context, t *sheet.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.table = t.Clone()
	s.saves++
	return nil
}

// FailSaves makes every later Save return err. A nil err clears it.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

// Saves reports how many saves succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Snapshot returns a copy of the stored table.
func (s *Store) Snapshot() *sheet.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Clone()
}
