// Package page describes the query surface the extractor needs from a
// fetched player page. Backends live in the headless and static subpackages.
package page

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Lookup when no element matched before the
// timeout elapsed.
var ErrNotFound = errors.New("element not found")

// Locator identifies one element by XPath. An empty Attr reads the element's
// text; otherwise the named attribute is returned.
type Locator struct {
	XPath string
	Attr  string
}

// Session is one opened page. It is owned by a single task.
type Session interface {
	Lookup(ctx context.Context, loc Locator, timeout time.Duration) (string, error)
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Renderer opens pages. Callers must Close every returned Session.
type Renderer interface {
	Open(ctx context.Context, url string) (Session, error)
}
