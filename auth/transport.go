// Package auth provides http.RoundTrippers that authenticate requests to the
// data API: a JWT bearer token for the database role, or any static header
// such as an API gateway key.
package auth

import (
	"context"
	"fmt"
	"net/http"
)

// HeaderTransport injects a static header into outgoing requests.
type HeaderTransport struct {
	Name  string
	Value string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.Name != "" && t.Value != "" {
		clone.Header.Set(t.Name, t.Value)
	}
	return base(t.Base).RoundTrip(clone)
}

// TokenSource returns the JWT to send with a request, e.g. after a refresh.
type TokenSource func(context.Context) (string, error)

// BearerTokenTransport injects "Authorization: Bearer <jwt>". Source, when
// set, is asked for a token on every request and takes precedence over Token.
type BearerTokenTransport struct {
	Token  string
	Source TokenSource
	Base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.Token
	if t.Source != nil {
		var err error
		token, err = t.Source(req.Context())
		if err != nil {
			return nil, fmt.Errorf("auth: fetching token: %w", err)
		}
	}

	clone := req.Clone(req.Context())
	if token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	return base(t.Base).RoundTrip(clone)
}

// Wrapper decorates a RoundTripper.
type Wrapper func(http.RoundTripper) http.RoundTripper

// Bearer returns a Wrapper adding a static bearer token.
func Bearer(token string) Wrapper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &BearerTokenTransport{Token: token, Base: next}
	}
}

// Header returns a Wrapper adding a static header.
func Header(name, value string) Wrapper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &HeaderTransport{Name: name, Value: value, Base: next}
	}
}

// Chain applies wrappers around base. The first wrapper sees the request
// first. A nil base means http.DefaultTransport.
func Chain(base http.RoundTripper, wrappers ...Wrapper) http.RoundTripper {
	rt := base
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		rt = wrappers[i](rt)
	}
	return rt
}

func base(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}
