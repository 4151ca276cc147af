package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/episodic/internal/cache"
	"github.com/ppiankov/episodic/internal/model"
	"github.com/ppiankov/episodic/internal/throttle"
	"github.com/ppiankov/episodic/internal/util"
)

var (
	// ErrUnexpectedStatus is wrapped by every non-2xx response error
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrDisallowedByRobots is returned when robots.txt forbids the URL
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
)

// fetchSleepFunc is the backoff between attempts; tests replace it
var fetchSleepFunc = time.Sleep

// StatusError carries the HTTP status of a rejected response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Page is a fetched HTML document
type Page struct {
	URL       string
	FinalURL  string
	Body      []byte
	FromCache bool
}

// Fetcher retrieves dictionary and transcript pages. Every request passes
// through the page cache, the per-host limiter and robots.txt.
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	maxAttempts int
	pages       cache.Cache
	limiter     *throttle.Limiter
	robots      *util.RobotsChecker
	logger      *slog.Logger
}

// NewFetcher builds a fetcher from the HTTP config. pages and limiter may be nil.
func NewFetcher(cfg model.HTTPConfig, pages cache.Cache, limiter *throttle.Limiter, logger *slog.Logger) *Fetcher {
	if pages == nil {
		pages = cache.Nop{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 2_000_000
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient:  client,
		userAgent:   cfg.UserAgent,
		maxBytes:    maxBytes,
		maxAttempts: attempts,
		pages:       pages,
		limiter:     limiter,
		logger:      logger.With("component", "fetcher"),
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsChecker(client, cfg.UserAgent)
	}
	return f
}

// Fetch returns the page at rawURL, from cache when possible. Transport
// errors, 429 and 5xx responses are retried up to the configured attempts.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	key := cache.PageKey(rawURL)
	if body, ok := f.pages.Get(key); ok {
		f.logger.Debug("cache hit", "url", rawURL)
		return &Page{URL: rawURL, FinalURL: rawURL, Body: body, FromCache: true}, nil
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.Check(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, rawURL)
		}
		crawlDelay = delay
	}

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			fetchSleepFunc(backoff(attempt))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, rawURL, crawlDelay); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
		}

		page, err := f.do(ctx, rawURL)
		if err == nil {
			if err := f.pages.Set(key, page.Body, 0); err != nil {
				f.logger.Warn("cache write failed", "url", rawURL, "error", err)
			}
			return page, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		f.logger.Debug("retrying fetch", "url", rawURL, "attempt", attempt, "error", err)
	}

	return nil, lastErr
}

// Get returns only the page body; it lets dictionary sources use the fetcher
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	page, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return page.Body, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ru;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{URL: rawURL, FinalURL: resp.Request.URL.String(), Body: body}, nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-2)) * 500 * time.Millisecond
}
