// Package fetch implements the storefront page fetcher using gocolly.
package fetch

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/shopsight/shopsight/internal/brand"
)

// Fetcher retrieves one resource relative to a site base URL. Network
// failures, timeouts, and non-2xx statuses all collapse to ok=false so
// extractors can treat every failure as "resource absent".
type Fetcher interface {
	Text(ctx context.Context, baseURL, path string) (string, bool)
	JSON(ctx context.Context, baseURL, path string, into any) bool
}

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Client implements Fetcher using a Colly collector per request.
type Client struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = true
	transport := newHTTPTransport()
	c.WithTransport(transport)
	return &Client{cfg: cfg, transport: transport, baseCollector: c}
}

// Text fetches a page and returns its raw body.
func (c *Client) Text(ctx context.Context, baseURL, path string) (string, bool) {
	body, ok := c.get(ctx, brand.JoinPath(baseURL, path))
	if !ok {
		return "", false
	}
	return string(body), true
}

// JSON fetches a document and decodes it into the target. A 2xx body that
// fails to decode counts as absent.
func (c *Client) JSON(ctx context.Context, baseURL, path string, into any) bool {
	body, ok := c.get(ctx, brand.JoinPath(baseURL, path))
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, into); err != nil {
		return false
	}
	return true
}

func (c *Client) get(ctx context.Context, url string) ([]byte, bool) {
	collector := c.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	if c.cfg.UserAgent != "" {
		collector.UserAgent = c.cfg.UserAgent
	}
	collector.SetRequestTimeout(c.cfg.Timeout)
	collector.WithTransport(c.transport)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, false
	case err := <-done:
		if err != nil || fetchErr != nil || body == nil {
			return nil, false
		}
		return body, true
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
