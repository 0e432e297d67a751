// Package client talks to a PostgREST-style data API over HTTP.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/robert-malhotra/go-postgrest-client/internal/wire"
	"github.com/robert-malhotra/go-postgrest-client/pkg/query"
)

const (
	mediaJSON         = "application/json"
	mediaSingleObject = "application/vnd.pgrst.object+json"
)

// Middleware manipulates an outgoing *http.Request before it is executed.
// The context is provided for cancellation and to support auth implementations
// that may need to perform async operations (e.g., token refresh).
type Middleware func(context.Context, *http.Request) error

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request) error

// Row is one decoded JSON object. Numbers are json.Number.
type Row = map[string]any

// SelectParams selects columns, filters and a page of rows.
type SelectParams = query.Params

// Client is a PostgREST client. It is safe for concurrent use.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	middleware  []Middleware
	headers     http.Header
	logger      *slog.Logger
	metrics     *Metrics
	retryPolicy RetryPolicy
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.RawPath != "" && !strings.HasSuffix(u.RawPath, "/") {
		u.RawPath += "/"
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		headers:    make(http.Header),
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	if c.metrics != nil {
		hc := *c.httpClient
		hc.Transport = c.metrics.RoundTripper(hc.Transport)
		c.httpClient = &hc
	}
	return c, nil
}

// BaseURL returns a copy of the API root.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// TargetURL returns the URL a select on entityType with p would request.
func (c *Client) TargetURL(entityType string, p *SelectParams) (*url.URL, error) {
	return query.TargetURL(c.baseURL, entityType, p)
}

func (c *Client) newRequest(ctx context.Context, method string, target *url.URL, body any, opts []RequestOption) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := wire.Encode(buf, body); err != nil {
			return nil, err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("error creating request for %s: %w", target, err)
	}

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", mediaJSON)
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// doRequest runs the middleware chain and executes req. Every endpoint funnels
// its outbound calls through here.
func (c *Client) doRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	for _, mw := range c.middleware {
		if err := mw(ctx, req); err != nil {
			return nil, fmt.Errorf("error applying middleware for %s: %w", req.URL, err)
		}
	}

	c.logger.DebugContext(ctx, "postgrest request", "method", req.Method, "url", req.URL.String())

	send := func() (*http.Response, error) { return c.httpClient.Do(req) }
	if req.Body == nil || req.Body == http.NoBody {
		return c.retry(ctx, send)
	}
	return send()
}

// do sends req and returns the response when its status is one of want.
// Any other status is turned into a *RemoteError.
func (c *Client) do(ctx context.Context, req *http.Request, want ...int) (*http.Response, error) {
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	for _, status := range want {
		if resp.StatusCode == status {
			return resp, nil
		}
	}

	defer resp.Body.Close()
	remote := newRemoteError(resp)
	c.logger.ErrorContext(ctx, "postgrest request failed",
		"method", req.Method,
		"url", req.URL.String(),
		"status", remote.Status,
		"code", remote.Code,
		"message", remote.Message,
	)
	return nil, remote
}

func (c *Client) doJSON(ctx context.Context, req *http.Request, out any, want ...int) (*http.Response, error) {
	resp, err := c.do(ctx, req, want...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return resp, nil
	}
	if err := wire.Decode(resp.Body, out); err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	return resp, nil
}
