package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/episodic/internal/cache"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/throttle"
)

func testHTTPConfig(attempts int) model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "test-agent",
		MaxBodyBytes: 1 << 20,
		MaxAttempts:  attempts,
	}
}

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, "<html><body>OK</body></html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(1), nil, nil, nil)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(page.Body) != "<html><body>OK</body></html>" {
		t.Errorf("Unexpected body: %s", page.Body)
	}
}

func TestFetch_TransientThenSuccess(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "<html>OK</html>")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(3), nil, nil, nil)
	page, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(page.Body) != "<html>OK</html>" {
		t.Errorf("Unexpected body: %s", page.Body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetch_SingleAttemptByDefault(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(0), nil, nil, nil)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error for 502")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts.Load())
	}
}

func TestFetch_PermanentFailure(t *testing.T) {
	noSleep(t)
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig(3), nil, nil, nil)
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("Expected ErrUnexpectedStatus, got %v", err)
	}
	if got := err.Error(); got != "unexpected status: 404 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if attempts.Load() != 1 {
		t.Errorf("404 should not be retried, got %d attempts", attempts.Load())
	}
}

func TestFetch_UsesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, "cached page")
	}))
	defer server.Close()

	pages := cache.NewMemoryCache(time.Minute, time.Minute)
	fetcher := NewFetcher(testHTTPConfig(1), pages, throttle.NewLimiter(100, 10), nil)

	for i := 0; i < 3; i++ {
		page, err := fetcher.Fetch(context.Background(), server.URL+"/word/hello")
		if err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
		if string(page.Body) != "cached page" {
			t.Errorf("unexpected body %q", page.Body)
		}
		if i > 0 && !page.FromCache {
			t.Errorf("fetch %d should come from cache", i)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 network hit, got %d", hits.Load())
	}
}

func TestFetch_RespectsRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /word/\n")
			return
		}
		t.Errorf("disallowed path fetched: %s", r.URL.Path)
	}))
	defer server.Close()

	cfg := testHTTPConfig(1)
	cfg.RespectRobots = true
	fetcher := NewFetcher(cfg, nil, nil, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/word/hello")
	if !errors.Is(err, ErrDisallowedByRobots) {
		t.Fatalf("expected ErrDisallowedByRobots, got %v", err)
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "0123456789")
	}))
	defer server.Close()

	cfg := testHTTPConfig(1)
	cfg.MaxBodyBytes = 4
	page, err := NewFetcher(cfg, nil, nil, nil).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if string(page.Body) != "0123" {
		t.Errorf("expected truncated body, got %q", page.Body)
	}
}
