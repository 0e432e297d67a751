// Package wire converts Go values to and from the JSON the data API speaks.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
)

// Normalize returns v with UUIDs rendered as 32 hex digits and timestamps as
// ISO-8601 strings. Maps and slices are copied; other values are returned
// unchanged.
func Normalize(v any) any {
	switch val := v.(type) {
	case uuid.UUID:
		return filter.FormatUUID(val)
	case *uuid.UUID:
		if val == nil {
			return nil
		}
		return filter.FormatUUID(*val)
	case time.Time:
		return filter.FormatTimestamp(val)
	case *time.Time:
		if val == nil {
			return nil
		}
		return filter.FormatTimestamp(*val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Normalize(elem)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case []uuid.UUID:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = filter.FormatUUID(elem)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes v as JSON after normalizing it. HTML characters are not
// escaped and no trailing newline is written.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Encode writes v to w as JSON after normalizing it.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Normalize(v)); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// Decode reads one JSON document from r into v. Numbers are kept as
// json.Number so integer columns do not lose precision.
func Decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding JSON: %w", err)
	}
	return nil
}
