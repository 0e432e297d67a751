// pkg/filter/serializer.go

package filter

import (
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// List is an ordered sequence operand, encoded as "(a,b,c)".
type List []any

// Set is an unordered collection operand (arrays, ranges), encoded as "{a,b,c}".
// Elements are written in slice order.
type Set []any

// EncodeValue renders v as a query-string token.
//
// Strings at the top level of a term are percent-encoded as they are. Inside a
// list, set or group they are wrapped in double quotes with `\` and `"`
// backslash-escaped, so reserved characters like `,` `.` `(` `)` stay part of
// the value. The same string therefore encodes differently depending on
// position.
func EncodeValue(v any, topLevel bool) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		if topLevel {
			return Escape(val), nil
		}
		return Escape(quote(val)), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10), nil
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10), nil
	case float64:
		return formatFloat(val), nil
	case float32:
		return formatFloat(float64(val)), nil
	case uuid.UUID:
		return FormatUUID(val), nil
	case time.Time:
		return Escape(FormatTimestamp(val)), nil
	case List:
		return encodeSequence(val, "(", ")")
	case []any:
		return encodeSequence(val, "(", ")")
	case []string:
		return encodeSequence(toAny(val), "(", ")")
	case []int:
		return encodeSequence(toAny(val), "(", ")")
	case []int64:
		return encodeSequence(toAny(val), "(", ")")
	case []float64:
		return encodeSequence(toAny(val), "(", ")")
	case []uuid.UUID:
		return encodeSequence(toAny(val), "(", ")")
	case Set:
		return encodeSequence(val, "{", "}")
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedValueType, v)
	}
}

// FormatUUID renders u as 32 lowercase hex digits without hyphens.
func FormatUUID(u uuid.UUID) string {
	return hex.EncodeToString(u[:])
}

// FormatTimestamp renders t as ISO-8601 with a numeric UTC offset. Fractional
// seconds are written with microsecond precision only when non-zero.
func FormatTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

// Escape percent-encodes s. Unreserved characters (letters, digits, "_.-~")
// and "/" are kept; every other byte becomes an upper-case %XX escape.
func Escape(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '_', '.', '-', '~', '/':
		return true
	}
	return false
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// formatFloat writes 17 significant digits so the value round-trips. The
// special values use PostgreSQL's spelling, and the "+" of an exponent is
// escaped so it is not read back as a space.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return Escape(strconv.FormatFloat(f, 'g', 17, 64))
}

func encodeSequence(values []any, lb, rb string) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		s, err := EncodeValue(v, false)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return lb + strings.Join(parts, ",") + rb, nil
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
