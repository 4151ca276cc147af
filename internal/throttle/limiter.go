package throttle

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per host so each dictionary site sees a
// polite request rate regardless of how many words are queued for it.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	sleepFor func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a limiter with the default per-host rate and burst
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		buckets:  make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		sleepFor: sleepContext,
	}
}

// SetHostRate overrides the rate for one host (e.g. "www.multitran.com")
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.mu.Lock()
	l.buckets[host] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	l.mu.Unlock()
}

// Wait blocks until a request to rawURL's host is allowed, then sleeps
// for extra (a robots.txt crawl delay, usually zero).
func (l *Limiter) Wait(ctx context.Context, rawURL string, extra time.Duration) error {
	host, err := hostOf(rawURL)
	if err != nil {
		return err
	}
	if err := l.bucket(host).Wait(ctx); err != nil {
		return err
	}
	if extra > 0 {
		return l.sleepFor(ctx, extra)
	}
	return nil
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[host]
	if !ok {
		b = rate.NewLimiter(l.rate, l.burst)
		l.buckets[host] = b
	}
	return b
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("parse URL: no host in %q", rawURL)
	}
	return u.Host, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
