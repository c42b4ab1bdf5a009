package proxy

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/haytac/lounge-emotes/internal/config"
	"golang.org/x/net/proxy"
)

// DefaultHTTPClientFactory builds HTTP clients for catalog requests.
type DefaultHTTPClientFactory struct {
	timeout time.Duration
}

// NewHTTPClientFactory creates a factory whose clients time out after timeout.
// A zero timeout means 60s.
func NewHTTPClientFactory(timeout time.Duration) *DefaultHTTPClientFactory {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &DefaultHTTPClientFactory{timeout: timeout}
}

// GetClient returns an HTTP client, configured with the given proxy if provided.
// If p is nil, the client honours the proxy environment variables.
func (f *DefaultHTTPClientFactory) GetClient(p *config.ProxyConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if p != nil && p.Address != "" {
		proxyURL, err := url.Parse(fmt.Sprintf("%s://%s", p.Type, p.Address))
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL %s://%s: %w", p.Type, p.Address, err)
		}
		if p.Username != "" {
			proxyURL.User = url.UserPassword(p.Username, p.Password)
		}

		switch p.Type {
		case "http", "https":
			transport.Proxy = http.ProxyURL(proxyURL)
		case "socks5":
			dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer for %s: %w", p.Address, err)
			}
			contextDialer, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer does not implement proxy.ContextDialer")
			}
			transport.DialContext = contextDialer.DialContext
			transport.Proxy = nil
		default:
			return nil, fmt.Errorf("unsupported proxy type: %s", p.Type)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
	}, nil
}
