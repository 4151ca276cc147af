package util

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"time"
)

// NewTransport returns the transport used by the page fetcher and the
// annotation client. An https request without its own proxy reuses the
// http proxy; with neither set, the standard proxy environment applies.
func NewTransport(httpProxy, httpsProxy string) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if httpProxy == "" && httpsProxy == "" {
		return t
	}

	proxies := map[string]string{"http": httpProxy, "https": httpsProxy}
	if httpsProxy == "" {
		proxies["https"] = httpProxy
	}
	t.Proxy = func(req *http.Request) (*url.URL, error) {
		raw := proxies[req.URL.Scheme]
		if raw == "" {
			return http.ProxyFromEnvironment(req)
		}
		return url.Parse(raw)
	}
	return t
}
