package client

import (
	"context"
	"net/http"
	"time"
)

// RetryPolicy decides whether a request should be retried.
type RetryPolicy interface {
	ShouldRetry(resp *http.Response, err error) (bool, time.Duration)
}

// RetryPolicyFunc adapts a function to the RetryPolicy interface.
type RetryPolicyFunc func(resp *http.Response, err error) (bool, time.Duration)

// ShouldRetry implements the RetryPolicy interface.
func (f RetryPolicyFunc) ShouldRetry(resp *http.Response, err error) (bool, time.Duration) {
	return f(resp, err)
}

// DefaultRetryPolicy retries transport errors and 5xx responses with a linear
// backoff, at most three times.
var DefaultRetryPolicy RetryPolicy = MaxAttempts(3, RetryPolicyFunc(func(resp *http.Response, err error) (bool, time.Duration) {
	switch {
	case err != nil:
		return true, 250 * time.Millisecond
	case resp.StatusCode >= 500:
		return true, 250 * time.Millisecond
	default:
		return false, 0
	}
}))

// maxRetries bounds policies not wrapped in MaxAttempts.
const maxRetries = 10

// MaxAttempts stops policy after n retries.
func MaxAttempts(n int, policy RetryPolicy) RetryPolicy {
	return &limitedPolicy{max: n, policy: policy}
}

type limitedPolicy struct {
	max    int
	policy RetryPolicy
}

func (p *limitedPolicy) ShouldRetry(resp *http.Response, err error) (bool, time.Duration) {
	return p.policy.ShouldRetry(resp, err)
}

func (c *Client) retry(ctx context.Context, fn func() (*http.Response, error)) (*http.Response, error) {
	policy := c.retryPolicy
	if policy == nil {
		return fn()
	}
	limit := maxRetries
	if lp, ok := policy.(*limitedPolicy); ok && lp.max >= 0 {
		limit = lp.max
	}

	var attempt int
	for {
		resp, err := fn()
		retry, delay := policy.ShouldRetry(resp, err)
		if !retry || ctx.Err() != nil || attempt >= limit {
			return resp, err
		}
		if resp != nil {
			resp.Body.Close()
		}
		attempt++
		c.logger.DebugContext(ctx, "postgrest retry", "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
}
