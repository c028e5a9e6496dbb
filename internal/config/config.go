// Package config loads and validates prosheet configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Sheet    SheetConfig    `mapstructure:"sheet"`
	Site     SiteConfig     `mapstructure:"site"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Static   StaticConfig   `mapstructure:"static"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SheetConfig locates the workbook.
type SheetConfig struct {
	Path string `mapstructure:"path"`
}

// SiteConfig describes where player pages live.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// WorkerConfig bounds the update pool. Zero concurrency means cores-1.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ExtractConfig tunes locator lookups.
type ExtractConfig struct {
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
}

// HeadlessConfig configures the chromedp renderer.
type HeadlessConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxParallel int           `mapstructure:"max_parallel"`
	NavTimeout  time.Duration `mapstructure:"nav_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// StaticConfig configures the colly renderer used when headless is off.
type StaticConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SnapshotConfig enables HTML snapshots when Dir is set.
type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

// MetricsConfig serves /metrics on Addr when set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PROSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sheet.path", "pro players.xlsx")
	v.SetDefault("site.base_url", "https://prosettings.net")
	v.SetDefault("worker.concurrency", 0)
	v.SetDefault("extract.lookup_timeout", "100ms")
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.max_parallel", 0)
	v.SetDefault("headless.nav_timeout", "45s")
	v.SetDefault("headless.user_agent", "")
	v.SetDefault("static.timeout", "15s")
	v.SetDefault("snapshot.dir", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Sheet.Path) == "" {
		return fmt.Errorf("sheet.path must be set")
	}
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL")
	}
	if c.Worker.Concurrency < 0 {
		return fmt.Errorf("worker.concurrency must be >= 0")
	}
	if c.Extract.LookupTimeout <= 0 {
		return fmt.Errorf("extract.lookup_timeout must be > 0")
	}
	if c.Headless.MaxParallel < 0 {
		return fmt.Errorf("headless.max_parallel must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.NavTimeout <= 0 {
		return fmt.Errorf("headless.nav_timeout must be > 0 when headless is enabled")
	}
	if !c.Headless.Enabled && c.Static.Timeout <= 0 {
		return fmt.Errorf("static.timeout must be > 0 when headless is disabled")
	}
	return nil
}
