package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrInvalidBaseURL is returned when the base URL is not absolute.
	ErrInvalidBaseURL = errors.New("postgrest: invalid base URL")
	// ErrNilHTTPClient indicates a nil HTTP client was provided.
	ErrNilHTTPClient = errors.New("postgrest: http client cannot be nil")
	// ErrMissingLocation is returned when a created row has no Location header.
	ErrMissingLocation = errors.New("postgrest: response has no Location header")
)

// InvalidReturningError reports a Returning value the operation does not support.
type InvalidReturningError struct {
	Returning Returning
}

func (e *InvalidReturningError) Error() string {
	return fmt.Sprintf("postgrest: invalid returning %q", string(e.Returning))
}

// RemoteError is a failed response from the server. It is the only error that
// originates after a round trip.
type RemoteError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	Raw     []byte `json:"-"`
}

func (e *RemoteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "postgrest: status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Details != "" {
		b.WriteString(" (" + e.Details + ")")
	}
	if e.Hint != "" {
		b.WriteString(" hint: " + e.Hint)
	}
	return b.String()
}

// Temporary reports whether the error may be retried.
func (e *RemoteError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.Status >= 500 && e.Status < 600
}

func newRemoteError(resp *http.Response) *RemoteError {
	remote := &RemoteError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		remote.Message = http.StatusText(resp.StatusCode)
		return remote
	}
	remote.Raw = data

	var payload struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
		Hint    json.RawMessage `json:"hint"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		// Fallback to plain message.
		remote.Message = strings.TrimSpace(string(data))
		if remote.Message == "" {
			remote.Message = http.StatusText(resp.StatusCode)
		}
		return remote
	}
	remote.Code = payload.Code
	remote.Message = payload.Message
	remote.Details = rawText(payload.Details)
	remote.Hint = rawText(payload.Hint)
	return remote
}

// rawText unwraps JSON strings and keeps other values (objects, numbers) as
// their JSON text. Null becomes empty.
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
