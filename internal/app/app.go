// Package app initializes and holds long-lived application services, acting
// as a small dependency injection container for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/prosettings-sheet/internal/config"
	"github.com/JakeFAU/prosettings-sheet/internal/extract"
	"github.com/JakeFAU/prosettings-sheet/internal/id/uuid"
	"github.com/JakeFAU/prosettings-sheet/internal/metrics"
	"github.com/JakeFAU/prosettings-sheet/internal/page"
	"github.com/JakeFAU/prosettings-sheet/internal/page/headless"
	"github.com/JakeFAU/prosettings-sheet/internal/page/static"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
	"github.com/JakeFAU/prosettings-sheet/internal/sheet/xlsx"
	"github.com/JakeFAU/prosettings-sheet/internal/snapshot"
	"github.com/JakeFAU/prosettings-sheet/internal/upsert"
	"github.com/JakeFAU/prosettings-sheet/internal/worker"
)

// App holds the shared services for one process.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *xlsx.Store
	pool       *worker.Pool
	closers    []func()
	metricsSrv *http.Server
	metricsLn  net.Listener
}

// New wires every service from cfg. It fails fast when a required service
// cannot be built.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: logger}

	store, err := xlsx.New(cfg.Sheet.Path)
	if err != nil {
		return nil, fmt.Errorf("init sheet: %w", err)
	}
	a.store = store

	renderer, err := a.buildRenderer()
	if err != nil {
		return nil, err
	}

	var snaps worker.Snapshotter
	if cfg.Snapshot.Dir != "" {
		s, err := snapshot.New(snapshot.Config{Dir: cfg.Snapshot.Dir})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init snapshots: %w", err)
		}
		logger.Info("Saving page snapshots", zap.String("dir", cfg.Snapshot.Dir))
		snaps = s
	}

	a.pool = worker.New(
		renderer,
		extract.New(extract.DefaultFields(), cfg.Extract.LookupTimeout, logger.Named("extract")),
		upsert.New(store, logger.Named("upsert")),
		snaps,
		uuid.New(),
		worker.Config{
			Concurrency: cfg.Worker.Concurrency,
			BaseURL:     cfg.Site.BaseURL,
		},
		logger.Named("worker"),
	)

	if cfg.Metrics.Addr != "" {
		if err := a.startMetrics(); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) buildRenderer() (page.Renderer, error) {
	if !a.cfg.Headless.Enabled {
		a.logger.Info("Using static renderer; pages are not executed")
		return static.New(static.Config{
			UserAgent: a.cfg.Headless.UserAgent,
			Timeout:   a.cfg.Static.Timeout,
		}), nil
	}
	r, err := headless.NewChromedp(headless.Config{
		MaxParallel:       a.cfg.Headless.MaxParallel,
		UserAgent:         a.cfg.Headless.UserAgent,
		NavigationTimeout: a.cfg.Headless.NavTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init headless renderer: %w", err)
	}
	a.closers = append(a.closers, r.Close)
	return r, nil
}

func (a *App) startMetrics() error {
	metrics.Init()
	ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("listen metrics: %w", err)
	}
	a.metricsLn = ln
	a.metricsSrv = &http.Server{
		Handler:           metrics.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.logger.Info("Starting metrics server", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := a.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return nil
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Pool returns the update pool.
func (a *App) Pool() *worker.Pool { return a.pool }

// SheetPath returns the workbook location.
func (a *App) SheetPath() string { return a.store.Path() }

// MetricsAddr returns the bound metrics address, or "" when disabled.
func (a *App) MetricsAddr() string {
	if a.metricsLn == nil {
		return ""
	}
	return a.metricsLn.Addr().String()
}

// Generate writes a fresh workbook template at the configured path.
func (a *App) Generate() error {
	if err := xlsx.Generate(a.store.Path()); err != nil {
		return err
	}
	a.logger.Info("Template generated", zap.String("path", a.store.Path()))
	return nil
}

// Close shuts down every service. It is safe to call more than once.
func (a *App) Close() {
	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("Error stopping metrics server", zap.Error(err))
		}
		cancel()
		a.metricsSrv = nil
		a.metricsLn = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.logger.Sync() //nolint:errcheck // best-effort flush
}

// Update re-imports every player listed in the sheet.
func (a *App) Update(ctx context.Context) (worker.Summary, error) {
	return a.pool.Update(ctx)
}

// ImportOne imports a single player page.
func (a *App) ImportOne(ctx context.Context, url string) (profile.Profile, error) {
	return a.pool.ImportOne(ctx, url)
}
