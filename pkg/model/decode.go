package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the exact format timestamps are returned in. Fractional
// seconds must have six digits.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// FromJSON builds a record from a decoded JSON object, converting each non-null
// value to the Go type of its field:
//
//	Reference  a record of the target schema holding only the target field
//	           (or the full object when the row embeds it)
//	Nested     a record decoded from a JSON object
//	uuid       uuid.UUID from hex with or without hyphens
//	timestamp  time.Time in TimestampLayout
//	enum       a declared value
//	int/float  int64/float64 from json.Number or float64
//
// Other kinds must already have the expected Go type. Nulls are kept.
func FromJSON(schema *Schema, transport Transport, raw map[string]any) (*Record, error) {
	if schema == nil {
		return nil, fmt.Errorf("model: nil schema")
	}
	data, err := decodeFields(schema, transport, raw)
	if err != nil {
		return nil, err
	}
	return &Record{schema: schema, transport: transport, data: data}, nil
}

func decodeFields(schema *Schema, transport Transport, raw map[string]any) (map[string]any, error) {
	data := make(map[string]any, len(raw))
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		value := raw[key]
		t, ok := schema.fields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, schema.entityType, key)
		}
		if value == nil {
			data[key] = nil
			continue
		}
		v, err := decodeValue(key, t, transport, value)
		if err != nil {
			return nil, err
		}
		data[key] = v
	}
	return data, nil
}

func decodeValue(field string, t FieldType, transport Transport, value any) (any, error) {
	switch t := t.(type) {
	case Reference:
		obj, ok := value.(map[string]any)
		if !ok {
			obj = map[string]any{t.Field: value}
		}
		rec, err := FromJSON(t.Schema, transport, obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return rec, nil

	case Nested:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, &TypeMismatchError{Field: field, Expected: t.String(), Actual: typeName(value)}
		}
		rec, err := FromJSON(t.Schema, transport, obj)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		return rec, nil

	case Enum:
		str, ok := value.(string)
		if !ok {
			return nil, &TypeMismatchError{Field: field, Expected: t.String(), Actual: typeName(value)}
		}
		if !slices.Contains(t.Values, str) {
			return nil, &InvalidEnumValueError{Field: field, Enum: t.Name, Value: str}
		}
		return str, nil

	case Primitive:
		v, ok := decodePrimitive(t.Kind, value)
		if !ok {
			return nil, &TypeMismatchError{Field: field, Expected: t.Kind.String(), Actual: describe(value)}
		}
		return v, nil
	}
	return nil, fmt.Errorf("model: %s: unsupported field type %T", field, t)
}

func decodePrimitive(k Kind, value any) (any, bool) {
	switch k {
	case KindUUID:
		switch v := value.(type) {
		case uuid.UUID:
			return v, true
		case string:
			id, err := uuid.Parse(v)
			return id, err == nil
		}
		return nil, false

	case KindTimestamp:
		switch v := value.(type) {
		case time.Time:
			return v, true
		case string:
			ts, err := time.Parse(TimestampLayout, v)
			return ts, err == nil
		}
		return nil, false

	case KindInt:
		switch v := value.(type) {
		case json.Number:
			n, err := v.Int64()
			return n, err == nil
		case float64:
			// 2^63 itself is out of range but exactly representable.
			if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
				return nil, false
			}
			return int64(v), true
		}

	case KindFloat:
		switch v := value.(type) {
		case json.Number:
			f, err := v.Float64()
			return f, err == nil
		}
	}

	if !matchesKind(k, value) {
		return nil, false
	}
	return value, true
}

// describe names a value in error messages; strings are shown with their
// content since that is what failed to parse.
func describe(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("string %q", v)
	case json.Number:
		return "number " + v.String()
	}
	return typeName(v)
}
