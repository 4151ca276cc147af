package util

import (
	"net/http"
	"net/url"
	"testing"
)

func proxyFor(t *testing.T, tr *http.Transport, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %s: %v", rawURL, err)
	}
	proxy, err := tr.Proxy(&http.Request{URL: u})
	if err != nil {
		t.Fatalf("proxy for %s: %v", rawURL, err)
	}
	if proxy == nil {
		return ""
	}
	return proxy.String()
}

func TestNewTransport_ProxyPerScheme(t *testing.T) {
	tr := NewTransport("http://plain:8080", "http://secure:8443")
	if got := proxyFor(t, tr, "http://wooordhunt.ru/word/hello"); got != "http://plain:8080" {
		t.Errorf("http request used %q", got)
	}
	if got := proxyFor(t, tr, "https://www.multitran.com/m.exe"); got != "http://secure:8443" {
		t.Errorf("https request used %q", got)
	}
}

func TestNewTransport_HTTPSFallsBackToHTTPProxy(t *testing.T) {
	tr := NewTransport("http://plain:8080", "")
	if got := proxyFor(t, tr, "https://www.multitran.com/m.exe"); got != "http://plain:8080" {
		t.Errorf("https request used %q", got)
	}
}

func TestNewTransport_TLSFloor(t *testing.T) {
	tr := NewTransport("", "")
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.MinVersion == 0 {
		t.Errorf("expected a minimum TLS version")
	}
}
