// Package upsert merges profiles into the sheet one writer at a time.
package upsert

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/prosettings-sheet/internal/metrics"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
	"github.com/JakeFAU/prosettings-sheet/internal/sheet"
)

// WriteError wraps a failure to load or persist the sheet.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("sheet %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result describes where a profile landed.
type Result struct {
	Row      int
	Appended bool
}

// Writer owns the store and the lock that serializes its read-modify-write
// cycles. Share one Writer per store.
type Writer struct {
	mu     sync.Mutex
	store  sheet.Store
	logger *zap.Logger
}

// New wraps store.
func New(store sheet.Store, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, logger: logger}
}

// Store exposes the underlying store for read-only callers.
func (w *Writer) Store() sheet.Store {
	return w.store
}

// Upsert replaces the row keyed by p.Name or appends p at the first empty
// row. The whole cycle runs under the writer lock.
func (w *Writer) Upsert(ctx context.Context, p profile.Profile) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.store.Load(ctx)
	if err != nil {
		metrics.ObserveUpsert("error")
		return Result{}, &WriteError{Op: "load", Err: err}
	}

	res := Result{}
	if idx, ok := t.Find(p.Name); ok {
		res.Row = idx
	} else {
		res.Row = t.FirstEmpty()
		res.Appended = true
	}
	if err := t.Put(res.Row, p); err != nil {
		metrics.ObserveUpsert("error")
		return Result{}, &WriteError{Op: "put", Err: err}
	}

	if err := w.store.Save(ctx, t); err != nil {
		metrics.ObserveUpsert("error")
		return Result{}, &WriteError{Op: "save", Err: err}
	}

	kind := "update"
	if res.Appended {
		kind = "append"
	}
	metrics.ObserveUpsert(kind)
	w.logger.Debug("profile written",
		zap.String("name", p.Name),
		zap.Int("row", res.Row),
		zap.String("kind", kind),
	)
	return res, nil
}

// Keys reads the current list of player names.
func (w *Writer) Keys(ctx context.Context) ([]string, error) {
	t, err := w.store.Load(ctx)
	if err != nil {
		return nil, &WriteError{Op: "load", Err: err}
	}
	return t.Keys(), nil
}
