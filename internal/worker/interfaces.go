package worker

import (
	"context"

	"github.com/JakeFAU/prosettings-sheet/internal/page"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
	"github.com/JakeFAU/prosettings-sheet/internal/upsert"
)

// Extractor reads a profile from an opened page.
type Extractor interface {
	Extract(ctx context.Context, s page.Session) (profile.Profile, error)
}

// Writer merges profiles into the sheet and lists its keys.
type Writer interface {
	Upsert(ctx context.Context, p profile.Profile) (upsert.Result, error)
	Keys(ctx context.Context) ([]string, error)
}

// Snapshotter keeps a copy of each rendered page.
type Snapshotter interface {
	Put(ctx context.Context, batch, key, html string) (string, error)
}

// IDGenerator produces batch IDs.
type IDGenerator interface {
	NewID() (string, error)
}
