package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 || c.httpClient == nil {
			return
		}
		c.httpClient.Timeout = d
	}
}

// WithMiddleware registers one or more request-middleware functions.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(c *Client) { c.middleware = append(c.middleware, mw...) }
}

// WithHeader registers a header sent with every request, e.g. a role.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if key == "" {
			return
		}
		c.headers.Add(key, value)
	}
}

// WithLogger sets the logger used for request lifecycle events.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics instruments the HTTP transport with m.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithRetryPolicy retries requests without a body (reads and deletes)
// according to policy. A policy wrapped in MaxAttempts retries at most that
// many times; any other policy is stopped after ten retries.
func WithRetryPolicy(policy RetryPolicy) ClientOption {
	return func(c *Client) { c.retryPolicy = policy }
}

// Header returns a RequestOption that sets a header value.
func Header(key, value string) RequestOption {
	return func(req *http.Request) error {
		if key == "" {
			return nil
		}
		req.Header.Set(key, value)
		return nil
	}
}

// Columns returns a RequestOption that sets the select parameter. On inserts
// and updates it picks the columns of the returned representation.
func Columns(columns ...string) RequestOption {
	return func(req *http.Request) error {
		if len(columns) == 0 {
			return nil
		}
		term := "select=" + strings.Join(columns, ",")
		if req.URL.RawQuery == "" {
			req.URL.RawQuery = term
		} else {
			req.URL.RawQuery += "&" + term
		}
		return nil
	}
}

// Returning selects what a write sends back.
type Returning string

const (
	// ReturnMinimal returns nothing.
	ReturnMinimal Returning = "minimal"
	// ReturnRepresentation returns the written rows.
	ReturnRepresentation Returning = "representation"
	// ReturnURL returns the location of the created row. Inserts only.
	ReturnURL Returning = "url"
)

// ParseReturning maps a name such as "representation" to a Returning.
func ParseReturning(s string) (Returning, error) {
	switch r := Returning(s); r {
	case ReturnMinimal, ReturnRepresentation, ReturnURL:
		return r, nil
	case "":
		return ReturnMinimal, nil
	}
	return "", &InvalidReturningError{Returning: Returning(s)}
}

func (r Returning) prefer() string {
	switch r {
	case ReturnRepresentation:
		return "return=representation"
	case ReturnURL:
		return "return=headers-only"
	default:
		return "return=minimal"
	}
}
