// Package snapshot saves the rendered HTML of player pages to a local
// directory so layout changes can be inspected after a failed run.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config captures the parameters for the snapshot directory.
type Config struct {
	// Dir is the root directory for snapshots. Empty disables snapshots.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// Store writes one HTML file per player and batch.
type Store struct {
	baseDir string
	now     func() time.Time
}

// New creates the directory if needed and checks that it is writable.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("snapshot directory is required")
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat snapshot directory: %w", err)
		}
		if mkErr := os.MkdirAll(cfg.Dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("snapshot path is not a directory")
	}

	probe := filepath.Join(cfg.Dir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("snapshot directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &Store{baseDir: cfg.Dir, now: time.Now}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// Put writes html under <batch>/<key>.html and returns the file path.
func (s *Store) Put(_ context.Context, batch, key, html string) (string, error) {
	name := unsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(key)), "_")
	if name == "" || strings.Trim(name, "._") == "" {
		return "", fmt.Errorf("invalid snapshot key %q", key)
	}
	if batch == "" {
		batch = s.now().UTC().Format("20060102T150405Z")
	}
	batch = unsafeChars.ReplaceAllString(strings.ToLower(batch), "_")

	fullPath := filepath.Join(s.baseDir, batch, name+".html")
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(fullPath), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(html), 0o600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return fullPath, nil
}
