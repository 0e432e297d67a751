// pkg/filter/geometry.go

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// Literals for PostgreSQL's built-in geometric and range types. They are plain
// strings, so they go through the regular string encoding when used as an
// operand, e.g. Overlap(BoxLiteral(b)).

// PointLiteral renders p as "(x,y)".
func PointLiteral(p orb.Point) string {
	return "(" + coord(p[0]) + "," + coord(p[1]) + ")"
}

// BoxLiteral renders b as "((maxX,maxY),(minX,minY))", the upper-right then
// lower-left corner order PostgreSQL prints boxes in.
func BoxLiteral(b orb.Bound) string {
	return "(" + PointLiteral(b.Max) + "," + PointLiteral(b.Min) + ")"
}

// PolygonLiteral renders the outer ring of p as "((x1,y1),...)". A closing
// point equal to the first one is dropped since polygons are implicitly closed.
func PolygonLiteral(p orb.Polygon) (string, error) {
	if len(p) == 0 || len(p[0]) < 3 {
		return "", fmt.Errorf("%w: polygon needs at least three points", ErrUnsupportedValueType)
	}
	ring := p[0]
	if ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	return "(" + joinPoints(ring) + ")", nil
}

// PathLiteral renders ls as an open path "[(x1,y1),...]".
func PathLiteral(ls orb.LineString) string {
	return "[" + joinPoints(ls) + "]"
}

// GeometryLiteral renders a point, bound, line string (as an open path), ring
// or polygon.
func GeometryLiteral(g orb.Geometry) (string, error) {
	switch g := g.(type) {
	case orb.Point:
		return PointLiteral(g), nil
	case orb.Bound:
		return BoxLiteral(g), nil
	case orb.LineString:
		if len(g) == 0 {
			return "", fmt.Errorf("%w: empty path", ErrUnsupportedValueType)
		}
		return PathLiteral(g), nil
	case orb.Ring:
		return PolygonLiteral(orb.Polygon{g})
	case orb.Polygon:
		return PolygonLiteral(g)
	}
	return "", fmt.Errorf("%w: geometry %T", ErrUnsupportedValueType, g)
}

// wktKeywords are the shapes ParseWKT reads. BOX is not WKT proper; it is the
// PostGIS spelling of a box given by two corners.
var wktKeywords = []string{"POINT", "LINESTRING", "POLYGON", "BOX"}

// ParseWKT reads POINT, LINESTRING, POLYGON or BOX(x1 y1,x2 y2) text and
// renders it with GeometryLiteral.
func ParseWKT(text string) (string, error) {
	text = strings.TrimSpace(text)
	var (
		g   orb.Geometry
		err error
	)
	if rest, ok := cutKeyword(text, "BOX"); ok {
		var corners orb.LineString
		corners, err = wkt.UnmarshalLineString("LINESTRING" + rest)
		if err == nil && len(corners) != 2 {
			err = fmt.Errorf("box takes two corners, got %d", len(corners))
		}
		if err == nil {
			g = corners.Bound()
		}
	} else {
		g, err = wkt.Unmarshal(text)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrUnsupportedValueType, text, err)
	}
	return GeometryLiteral(g)
}

// isWKT reports whether s opens with one of wktKeywords and a parenthesis.
func isWKT(s string) bool {
	for _, kw := range wktKeywords {
		if rest, ok := cutKeyword(s, kw); ok && strings.HasPrefix(strings.TrimSpace(rest), "(") {
			return true
		}
	}
	return false
}

func cutKeyword(s, kw string) (string, bool) {
	if len(s) < len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return "", false
	}
	return s[len(kw):], true
}

// RangeLiteral renders a range such as "[1,10)". A nil bound is unbounded.
func RangeLiteral(lower, upper any, lowerInclusive, upperInclusive bool) (string, error) {
	lo, err := rangeBound(lower)
	if err != nil {
		return "", err
	}
	hi, err := rangeBound(upper)
	if err != nil {
		return "", err
	}

	lb, rb := "(", ")"
	if lowerInclusive {
		lb = "["
	}
	if upperInclusive {
		rb = "]"
	}
	return lb + lo + "," + hi + rb, nil
}

func rangeBound(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case time.Time:
		return FormatTimestamp(v), nil
	}
	return EncodeValue(v, true)
}

func joinPoints(points []orb.Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = PointLiteral(p)
	}
	return strings.Join(parts, ",")
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
