package static

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/prosettings-sheet/internal/page"
)

const fixture = `<html><body>
<div class="name"><h1> alpha </h1></div>
<table><tr class="format-number field-edpi"><td>'400'</td></tr></table>
<a id="pad" href="/pads/x">padX</a>
</body></html>`

func TestSessionLookup(t *testing.T) {
	t.Parallel()

	s, err := FromHTML(fixture)
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // no-op

	ctx := context.Background()
	got, err := s.Lookup(ctx, page.Locator{XPath: "//div[@class='name']/h1"}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got)

	got, err = s.Lookup(ctx, page.Locator{XPath: "//a[@id='pad']", Attr: "href"}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "/pads/x", got)

	_, err = s.Lookup(ctx, page.Locator{XPath: "//a[@id='pad']", Attr: "title"}, time.Millisecond)
	require.ErrorIs(t, err, page.ErrNotFound)

	_, err = s.Lookup(ctx, page.Locator{XPath: "//div[@class='missing']"}, time.Millisecond)
	require.ErrorIs(t, err, page.ErrNotFound)

	_, err = s.Lookup(ctx, page.Locator{XPath: "//div[@"}, time.Millisecond)
	require.Error(t, err)
	require.NotErrorIs(t, err, page.ErrNotFound)
}

func TestSessionHTML(t *testing.T) {
	t.Parallel()

	s, err := FromHTML(fixture)
	require.NoError(t, err)
	out, err := s.HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out, "field-edpi")
}

func TestRendererOpen(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	r := New(Config{UserAgent: "prosheet-test", Timeout: time.Second})
	s, err := r.Open(context.Background(), srv.URL+"/players/alpha/")
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // no-op

	name, err := s.Lookup(context.Background(), page.Locator{XPath: "//h1"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "alpha", name)
	assert.Equal(t, "prosheet-test", gotUA)
}

func TestRendererOpenHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(Config{}).Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "colly"))
}

func TestRendererOpenSameURLTwice(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	r := New(Config{Timeout: time.Second})
	url := srv.URL + "/players/alpha/"
	for i := range 2 {
		s, err := r.Open(context.Background(), url)
		require.NoError(t, err, "open #%d", i+1)
		name, err := s.Lookup(context.Background(), page.Locator{XPath: "//h1"}, 0)
		require.NoError(t, err)
		assert.Equal(t, "alpha", name)
		require.NoError(t, s.Close())
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestRendererOpenReturnsOnCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(fixture))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(Config{Timeout: time.Second}).Open(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}
