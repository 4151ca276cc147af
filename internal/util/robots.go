package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a dictionary or transcript URL may be fetched.
// Rules are fetched once per host and kept for the life of the checker.
type RobotsChecker struct {
	mu         sync.RWMutex
	rules      map[string]*robotstxt.RobotsData
	httpClient *http.Client
	userAgent  string
	agentToken string
}

// NewRobotsChecker creates a checker that identifies as userAgent
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
		agentToken: NormalizeUserAgent(userAgent),
	}
}

// Check returns whether rawURL is allowed and the crawl delay requested
// for our agent. An unreachable robots.txt allows everything.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data := r.rulesFor(ctx, parsed)
	if data == nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	if path == "" {
		path = "/"
	}

	var delay time.Duration
	if group := data.FindGroup(r.agentToken); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(path, r.agentToken), delay, nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	r.mu.RLock()
	data, ok := r.rules[u.Host]
	r.mu.RUnlock()
	if ok {
		return data
	}

	data, err := r.fetch(ctx, fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host))
	if err != nil {
		// not cached: a later call may reach the host
		return nil
	}

	r.mu.Lock()
	r.rules[u.Host] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// NormalizeUserAgent reduces a User-Agent header to the product token
// robots.txt groups are matched against ("Episodic/0.1 (+url)" -> "Episodic").
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
