package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_Check(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			t.Errorf("unexpected request %s", r.URL.Path)
		}
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte("User-agent: Episodic\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Episodic/0.1 (+https://example.com)")
	ctx := context.Background()

	allowed, delay, err := checker.Check(ctx, server.URL+"/word/hello")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !allowed {
		t.Errorf("expected /word/hello to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected 2s crawl delay, got %v", delay)
	}

	allowed, _, _ = checker.Check(ctx, server.URL+"/private/page")
	if allowed {
		t.Errorf("expected /private/page to be disallowed")
	}

	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", n)
	}
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "Episodic/0.1")
	allowed, _, err := checker.Check(context.Background(), server.URL+"/anything")
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !allowed {
		t.Errorf("missing robots.txt should allow everything")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"Episodic/0.1 (+https://x)": "Episodic",
		"curl":                      "curl",
		"":                          "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	orig := userHomeDir
	userHomeDir = func() (string, error) { return "/home/test", nil }
	defer func() { userHomeDir = orig }()

	if got := ExpandHome("~/.episodic/corpus.json"); got != "/home/test/.episodic/corpus.json" {
		t.Errorf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}
