// Package static serves page lookups from HTML fetched without a browser.
// Pages whose fields are rendered by JavaScript need the headless backend.
package static

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html"

	"github.com/JakeFAU/prosettings-sheet/internal/page"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Renderer implements page.Renderer using a Colly collector.
type Renderer struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Renderer.
func New(cfg Config) *Renderer {
	// Clones share the visited store, so revisits must be allowed for a
	// second update in the same process.
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.WithTransport(newHTTPTransport())
	return &Renderer{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Open fetches url once and parses it for XPath lookups.
func (r *Renderer) Open(ctx context.Context, url string) (page.Session, error) {
	var (
		body     []byte
		fetchErr error
	)
	collector := r.baseCollector.Clone()
	if r.cfg.UserAgent != "" {
		collector.UserAgent = r.cfg.UserAgent
	}
	timeout := r.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.OnResponse(func(resp *colly.Response) {
		body = append([]byte(nil), resp.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	// On cancellation Open returns early and the visit finishes in the
	// background, bounded by the request timeout. Its results are dropped.
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("colly visit failed: %w", err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("colly response failed: %w", fetchErr)
		}
	}
	return Parse(body)
}

// Parse builds a session from raw HTML.
func Parse(body []byte) (page.Session, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Session{doc: doc}, nil
}

// FromHTML is Parse for string input.
func FromHTML(doc string) (page.Session, error) {
	return Parse([]byte(doc))
}

// Session answers lookups against a parsed document. The timeout is ignored
// because the document never changes after parsing.
type Session struct {
	doc *html.Node
}

// Lookup returns the first node matching loc.
func (s *Session) Lookup(ctx context.Context, loc page.Locator, _ time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	node, err := htmlquery.Query(s.doc, loc.XPath)
	if err != nil {
		return "", fmt.Errorf("xpath %s: %w", loc.XPath, err)
	}
	if node == nil {
		return "", page.ErrNotFound
	}
	if loc.Attr == "" {
		return strings.TrimSpace(htmlquery.InnerText(node)), nil
	}
	for _, a := range node.Attr {
		if a.Key == loc.Attr {
			return strings.TrimSpace(a.Val), nil
		}
	}
	return "", page.ErrNotFound
}

// HTML renders the parsed document back to markup.
func (s *Session) HTML(context.Context) (string, error) {
	return htmlquery.OutputHTML(s.doc, true), nil
}

// Close is a no-op.
func (s *Session) Close() error { return nil }

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
