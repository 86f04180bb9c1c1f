package utils

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

type HTTPClientConfig struct {
	Timeout   time.Duration
	KATimeout time.Duration
	UserAgent string
	Headers   map[string]string
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// GrabHTTPClient wraps an *http.Client and applies the configured
// User-Agent and default headers on every request.
type GrabHTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func newTransport(cfg HTTPClientConfig) *http.Transport {
	return &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
		MaxConnsPerHost:     0,
	}
}

// NewHTTPClient returns the plain client used for file transfers. It never
// retries; retry on a failed transfer is a caller decision.
func NewHTTPClient(cfg HTTPClientConfig) *GrabHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 90 * time.Second
	}
	return &GrabHTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg),
		},
		config: cfg,
	}
}

// NewListingClient returns the client used for directory-listing GETs. These
// are small, idempotent fetches, so transient failures get a few retries
// with backoff before discovery gives up on a page.
func NewListingClient(cfg HTTPClientConfig) *GrabHTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 90 * time.Second
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.HTTPClient.Transport = newTransport(cfg)
	return &GrabHTTPClient{
		client: rc.StandardClient(),
		config: cfg,
	}
}

func (g *GrabHTTPClient) SetHeader(key, value string) {
	if g.config.Headers == nil {
		g.config.Headers = make(map[string]string)
	}
	g.config.Headers[key] = value
}

func (g *GrabHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if g.config.UserAgent != "" {
		req.Header.Set("User-Agent", g.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	for k, v := range g.config.Headers {
		req.Header.Set(k, v)
	}
	return g.client.Do(req)
}
