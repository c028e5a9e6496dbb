package headless

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JakeFAU/prosettings-sheet/internal/page"
)

func TestNewChromedpLimiterValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewChromedp(Config{MaxParallel: -1}); err == nil {
		t.Fatal("expected error for negative max parallel")
	}
	renderer, err := NewChromedp(Config{MaxParallel: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer renderer.Close()
	if cap(renderer.limiter) != 2 {
		t.Fatalf("expected limiter capacity 2, got %d", cap(renderer.limiter))
	}
}

func TestRendererNavTimeoutDefault(t *testing.T) {
	t.Parallel()

	renderer := &Renderer{}
	if got := renderer.navTimeout(); got != 45*time.Second {
		t.Fatalf("expected default nav timeout, got %v", got)
	}
	renderer.cfg.NavigationTimeout = time.Second
	if got := renderer.navTimeout(); got != time.Second {
		t.Fatalf("expected override to be used, got %v", got)
	}
}

func TestAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	renderer := &Renderer{limiter: make(chan struct{}, 1)}
	if err := renderer.acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := renderer.acquire(ctx); err == nil {
		t.Fatal("expected second acquire to block until the context expired")
	}

	renderer.release()
	if err := renderer.acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	released := 0
	canceled := 0
	s := &session{
		tab:     context.Background(),
		cancel:  func() { canceled++ },
		release: func() { released++ },
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if released != 1 || canceled != 1 {
		t.Fatalf("expected one release and one cancel, got %d and %d", released, canceled)
	}
}

func TestLookupErrMapping(t *testing.T) {
	t.Parallel()

	loc := page.Locator{XPath: "//h1"}

	err := lookupErr(context.Background(), loc, "read", context.DeadlineExceeded)
	if !errors.Is(err, page.ErrNotFound) {
		t.Fatalf("expected expired read deadline to map to ErrNotFound, got %v", err)
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err = lookupErr(canceled, loc, "read", context.Canceled)
	if !errors.Is(err, context.Canceled) || errors.Is(err, page.ErrNotFound) {
		t.Fatalf("expected caller cancellation to pass through, got %v", err)
	}

	boom := errors.New("node detached")
	err = lookupErr(context.Background(), loc, "read", boom)
	if !errors.Is(err, boom) || err.Error() != "read //h1: node detached" {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}
