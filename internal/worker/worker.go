// Package worker runs player updates: one fetch+extract+upsert task per
// player, spread over a bounded pool of goroutines. A failing task is logged
// and counted; it never stops its siblings.
package worker

import (
	"context"
	"fmt"
	neturl "net/url"
	"path"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/prosettings-sheet/internal/metrics"
	"github.com/JakeFAU/prosettings-sheet/internal/page"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

// Config controls Pool behavior.
type Config struct {
	// Concurrency bounds parallel tasks. Zero selects DefaultConcurrency.
	Concurrency int
	// BaseURL is the site root player pages hang off.
	BaseURL string
}

// Failure is one task that did not complete.
type Failure struct {
	Key string
	URL string
	Err error
}

// Summary aggregates one batch.
type Summary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failures  []Failure
	Duration  time.Duration
}

// Pool dispatches player tasks.
type Pool struct {
	renderer  page.Renderer
	extractor Extractor
	writer    Writer
	snapshots Snapshotter
	ids       IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Pool. snapshots and ids may be nil.
func New(
	renderer page.Renderer,
	extractor Extractor,
	writer Writer,
	snapshots Snapshotter,
	ids IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency()
	}
	return &Pool{
		renderer:  renderer,
		extractor: extractor,
		writer:    writer,
		snapshots: snapshots,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}
}

// DefaultConcurrency leaves one core free, with a floor of one worker.
func DefaultConcurrency() int {
	return max(runtime.NumCPU()-1, 1)
}

// Concurrency reports the configured bound.
func (p *Pool) Concurrency() int {
	return p.cfg.Concurrency
}

// Update re-imports every player currently listed in the sheet.
func (p *Pool) Update(ctx context.Context) (Summary, error) {
	keys, err := p.writer.Keys(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("read player keys: %w", err)
	}
	return p.RunBatch(ctx, keys), nil
}

// RunBatch imports every key and reports how many succeeded. Completion
// order is unspecified.
func (p *Pool) RunBatch(ctx context.Context, keys []string) Summary {
	start := time.Now()
	summary := Summary{BatchID: p.newBatchID(), Total: len(keys)}
	logger := p.logger.With(zap.String("batch_id", summary.BatchID))
	logger.Info("batch started", zap.Int("players", len(keys)), zap.Int("concurrency", p.cfg.Concurrency))

	errs := make([]error, len(keys))
	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			url := profile.SubjectURL(p.cfg.BaseURL, key)
			_, errs[i] = p.runTask(ctx, summary.BatchID, key, url)
			if errs[i] != nil {
				logger.Error("player update failed", zap.String("player", key), zap.String("url", url), zap.Error(errs[i]))
			} else {
				logger.Info("player updated", zap.String("player", key))
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			summary.Succeeded++
			continue
		}
		summary.Failures = append(summary.Failures, Failure{
			Key: keys[i],
			URL: profile.SubjectURL(p.cfg.BaseURL, keys[i]),
			Err: err,
		})
	}
	summary.Duration = time.Since(start)
	logger.Info("batch finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", len(summary.Failures)),
		zap.Duration("duration", summary.Duration),
	)
	return summary
}

// ImportOne imports a single player page synchronously.
func (p *Pool) ImportOne(ctx context.Context, url string) (profile.Profile, error) {
	prof, err := p.runTask(ctx, "", url, url)
	if err != nil {
		p.logger.Error("player import failed", zap.String("url", url), zap.Error(err))
		return profile.Profile{}, err
	}
	p.logger.Info("player imported", zap.String("player", prof.Name), zap.String("url", url))
	return prof, nil
}

// runTask is the task boundary: every error, including a panic, comes back
// as the returned error.
func (p *Pool) runTask(ctx context.Context, batchID, key, url string) (prof profile.Profile, err error) {
	start := time.Now()
	metrics.IncActiveWorkers()
	defer func() {
		metrics.DecActiveWorkers()
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.ObserveTask(status, time.Since(start))
	}()
	return p.process(ctx, batchID, key, url)
}

func (p *Pool) process(ctx context.Context, batchID, key, url string) (profile.Profile, error) {
	session, err := p.renderer.Open(ctx, url)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			p.logger.Warn("failed to close page", zap.String("url", url), zap.Error(cerr))
		}
	}()

	prof, extractErr := p.extractor.Extract(ctx, session)
	p.snapshot(ctx, session, batchID, key)
	if extractErr != nil {
		return profile.Profile{}, extractErr
	}

	if _, err := p.writer.Upsert(ctx, prof); err != nil {
		return profile.Profile{}, err
	}
	return prof, nil
}

func (p *Pool) snapshot(ctx context.Context, session page.Session, batchID, key string) {
	if p.snapshots == nil {
		return
	}
	html, err := session.HTML(ctx)
	if err != nil {
		p.logger.Warn("snapshot render failed", zap.String("player", key), zap.Error(err))
		return
	}
	path, err := p.snapshots.Put(ctx, batchID, snapshotKey(key), html)
	if err != nil {
		p.logger.Warn("snapshot write failed", zap.String("player", key), zap.Error(err))
		return
	}
	p.logger.Debug("snapshot saved", zap.String("player", key), zap.String("path", path))
}

func (p *Pool) newBatchID() string {
	if p.ids == nil {
		return ""
	}
	id, err := p.ids.NewID()
	if err != nil {
		p.logger.Warn("batch id generation failed", zap.Error(err))
		return ""
	}
	return id
}

// snapshotKey turns a player URL into its slug. Plain keys pass through.
func snapshotKey(key string) string {
	u, err := neturl.Parse(key)
	if err != nil || u.Host == "" {
		return key
	}
	slug := path.Base(strings.TrimRight(u.Path, "/"))
	if slug == "." || slug == "/" || slug == "" {
		return u.Host
	}
	return slug
}
