package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Sheet.Path != "pro players.xlsx" {
		t.Fatalf("unexpected default sheet path %q", cfg.Sheet.Path)
	}
	if cfg.Extract.LookupTimeout != 100*time.Millisecond {
		t.Fatalf("expected 100ms lookup timeout, got %v", cfg.Extract.LookupTimeout)
	}
	if !cfg.Headless.Enabled || cfg.Worker.Concurrency != 0 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
sheet:
  path: /data/players.xlsx
site:
  base_url: https://example.com
worker:
  concurrency: 6
extract:
  lookup_timeout: 250ms
headless:
  enabled: false
  max_parallel: 2
  nav_timeout: 30s
static:
  timeout: 5s
snapshot:
  dir: /tmp/snaps
metrics:
  addr: ":9102"
logging:
  development: false
  level: debug
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Sheet.Path != "/data/players.xlsx" || cfg.Site.BaseURL != "https://example.com" {
		t.Fatalf("expected sheet/site overrides: %+v", cfg)
	}
	if cfg.Worker.Concurrency != 6 || cfg.Extract.LookupTimeout != 250*time.Millisecond {
		t.Fatalf("expected worker/extract overrides: %+v", cfg)
	}
	if cfg.Headless.Enabled || cfg.Headless.MaxParallel != 2 || cfg.Headless.NavTimeout != 30*time.Second {
		t.Fatalf("expected headless overrides: %+v", cfg.Headless)
	}
	if cfg.Static.Timeout != 5*time.Second || cfg.Snapshot.Dir != "/tmp/snaps" || cfg.Metrics.Addr != ":9102" {
		t.Fatalf("expected static/snapshot/metrics overrides: %+v", cfg)
	}
	if cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides: %+v", cfg.Logging)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Sheet:    SheetConfig{Path: "players.xlsx"},
		Site:     SiteConfig{BaseURL: "https://prosettings.net"},
		Extract:  ExtractConfig{LookupTimeout: time.Millisecond},
		Headless: HeadlessConfig{Enabled: true, NavTimeout: time.Second},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missing sheet", mutate: func(c *Config) { c.Sheet.Path = "" }, want: "sheet.path"},
		{name: "relative base url", mutate: func(c *Config) { c.Site.BaseURL = "prosettings.net" }, want: "site.base_url"},
		{name: "negative concurrency", mutate: func(c *Config) { c.Worker.Concurrency = -1 }, want: "worker.concurrency"},
		{name: "zero lookup timeout", mutate: func(c *Config) { c.Extract.LookupTimeout = 0 }, want: "extract.lookup_timeout"},
		{name: "negative max parallel", mutate: func(c *Config) { c.Headless.MaxParallel = -1 }, want: "headless.max_parallel"},
		{name: "zero nav timeout", mutate: func(c *Config) { c.Headless.NavTimeout = 0 }, want: "headless.nav_timeout"},
		{
			name: "static without timeout",
			mutate: func(c *Config) {
				c.Headless.Enabled = false
				c.Static.Timeout = 0
			},
			want: "static.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
