package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestBearerTokenTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := &http.Client{Transport: &BearerTokenTransport{Token: "secret"}}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBearerTokenTransportDoesNotMutateRequest(t *testing.T) {
	var seen string
	rt := &BearerTokenTransport{Token: "secret", Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r.Header.Get("Authorization")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/people", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", seen)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestBearerTokenSource(t *testing.T) {
	calls := 0
	rt := &BearerTokenTransport{
		Token: "stale",
		Source: func(context.Context) (string, error) {
			calls++
			return "fresh", nil
		},
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
		}),
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	boom := errors.New("refresh failed")
	rt.Source = func(context.Context) (string, error) { return "", boom }
	_, err = rt.RoundTrip(req)
	assert.ErrorIs(t, err, boom)
}

func TestHeaderTransport(t *testing.T) {
	rt := &HeaderTransport{Name: "apikey", Value: "k", Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "k", r.Header.Get("apikey"))
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})}
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	empty := &HeaderTransport{Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Empty(t, r.Header)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})}
	_, err = empty.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
	require.NoError(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	record := func(name string) Wrapper {
		return func(next http.RoundTripper) http.RoundTripper {
			return roundTripFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	final := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "web_anon", r.Header.Get("Accept-Profile"))
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	rt := Chain(final, record("first"), Bearer("jwt"), Header("Accept-Profile", "web_anon"), record("last"))
	_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.com/", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "last", "base"}, order)

	assert.Equal(t, http.DefaultTransport, Chain(nil))
}
