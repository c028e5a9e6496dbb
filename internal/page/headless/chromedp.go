// Package headless opens player pages in headless Chrome via chromedp.
package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/JakeFAU/prosettings-sheet/internal/page"
)

// Config controls the behavior of the headless renderer.
type Config struct {
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
}

// Renderer implements page.Renderer. Every session gets its own browser
// process spawned from the shared allocator.
type Renderer struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewChromedp creates a renderer. No browser is started until Open.
func NewChromedp(cfg Config) (*Renderer, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close shuts the browser down.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Open starts a browser for the session, navigates it to url and waits for the body to be ready.
func (r *Renderer) Open(ctx context.Context, url string) (page.Session, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(r.allocator)
	s := &session{
		tab:     tabCtx,
		cancel:  tabCancel,
		release: r.release,
	}

	// The first Run allocates the browser and ties it to the context it is
	// given, so it must not carry the navigation deadline.
	stopLaunch := context.AfterFunc(ctx, tabCancel)
	err := chromedp.Run(tabCtx)
	stopLaunch()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(tabCtx, r.navTimeout())
	defer navCancel()
	stop := context.AfterFunc(ctx, navCancel)
	defer stop()

	actions := []chromedp.Action{
		r.networkSetupAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	return s, nil
}

func (r *Renderer) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if r.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(r.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		return nil
	})
}

func (r *Renderer) acquire(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	select {
	case r.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (r *Renderer) release() {
	if r.limiter == nil {
		return
	}
	select {
	case <-r.limiter:
	default:
	}
}

func (r *Renderer) navTimeout() time.Duration {
	if r.cfg.NavigationTimeout > 0 {
		return r.cfg.NavigationTimeout
	}
	return 45 * time.Second
}

type session struct {
	tab     context.Context
	cancel  context.CancelFunc
	release func()
	closed  bool
}

// Lookup waits up to timeout for the XPath to match and reads it.
func (s *session) Lookup(ctx context.Context, loc page.Locator, timeout time.Duration) (string, error) {
	waitCtx, cancel := context.WithTimeout(s.tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var nodes []*cdp.Node
	if err := chromedp.Run(waitCtx, chromedp.Nodes(loc.XPath, &nodes, chromedp.BySearch)); err != nil {
		return "", lookupErr(ctx, loc, "lookup", err)
	}
	if len(nodes) == 0 {
		return "", page.ErrNotFound
	}

	// The node can detach before it is read; the read shares the lookup
	// deadline so it cannot block past it.
	var out string
	var err error
	ids := []cdp.NodeID{nodes[0].NodeID}
	if loc.Attr == "" {
		err = chromedp.Run(waitCtx, chromedp.Text(ids, &out, chromedp.ByNodeID))
	} else {
		var ok bool
		err = chromedp.Run(waitCtx, chromedp.AttributeValue(ids, loc.Attr, &out, &ok, chromedp.ByNodeID))
		if err == nil && !ok {
			return "", page.ErrNotFound
		}
	}
	if err != nil {
		return "", lookupErr(ctx, loc, "read", err)
	}
	return strings.TrimSpace(out), nil
}

// lookupErr maps an expired lookup deadline to page.ErrNotFound. A canceled
// caller context is returned as is.
func lookupErr(ctx context.Context, loc page.Locator, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return page.ErrNotFound
	}
	return fmt.Errorf("%s %s: %w", op, loc.XPath, err)
}

// HTML returns the rendered document.
func (s *session) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("outer html: %w", err)
	}
	return html, nil
}

// Close closes the tab and frees the renderer slot. It is safe to call twice.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.release()
	return nil
}
