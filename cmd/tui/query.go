package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-postgrest-client/pkg/client"
	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/query"
)

// queryInput is the text of the query form.
type queryInput struct {
	entity  string
	columns string
	filters string
	limit   string
	offset  string
}

// params parses the form into select parameters. Filters are one term per
// line; blank lines are ignored.
func (in queryInput) params() (*client.SelectParams, error) {
	if strings.TrimSpace(in.entity) == "" {
		return nil, fmt.Errorf("Entity is required")
	}

	p := &client.SelectParams{}
	for _, col := range strings.Split(in.columns, ",") {
		if col = strings.TrimSpace(col); col != "" {
			p.Select = append(p.Select, col)
		}
	}

	for i, line := range strings.Split(in.filters, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nf, err := filter.ParseTerm(line)
		if err != nil {
			return nil, fmt.Errorf("filter line %d: %w", i+1, err)
		}
		p.Filters = append(p.Filters, nf)
	}

	var err error
	if p.Limit, err = parseCount("Limit", in.limit); err != nil {
		return nil, err
	}
	if p.Offset, err = parseCount("Offset", in.offset); err != nil {
		return nil, err
	}
	return p, nil
}

func parseCount(label, text string) (*int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", label)
	}
	if label == "Limit" {
		return query.Limit(n), nil
	}
	return query.Offset(n), nil
}

// operandShape is how the filter builder reads its value field: as a literal
// operand or as the coordinates of a geometric shape.
type operandShape string

const (
	shapeValue   operandShape = "value"
	shapePoint   operandShape = "point"
	shapeBox     operandShape = "box"
	shapePath    operandShape = "path"
	shapePolygon operandShape = "polygon"
)

var operandShapes = []operandShape{shapeValue, shapePoint, shapeBox, shapePath, shapePolygon}

// placeholder hints at the expected input.
func (s operandShape) placeholder() string {
	switch s {
	case shapePoint:
		return "x y"
	case shapeBox:
		return "x1 y1, x2 y2"
	case shapePath, shapePolygon:
		return "x1 y1, x2 y2, x3 y3, ..."
	}
	return "18, (a,b), {a,b}, null"
}

// wkt wraps "x y, x y" coordinates in the WKT for s.
func (s operandShape) wkt(coords string) (string, error) {
	var points []string
	for _, p := range strings.Split(coords, ",") {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return "", fmt.Errorf("Coordinates are required")
	}
	joined := strings.Join(points, ",")

	switch s {
	case shapePoint:
		return "POINT(" + joined + ")", nil
	case shapeBox:
		return "BOX(" + joined + ")", nil
	case shapePath:
		return "LINESTRING(" + joined + ")", nil
	case shapePolygon:
		return "POLYGON((" + joined + "))", nil
	}
	return "", fmt.Errorf("unknown shape %q", s)
}

// builderTerm renders one filter term from the builder form and checks that
// it parses back. Shapes other than shapeValue are only accepted for
// geometric operators.
func builderTerm(field string, op filter.Operator, negate bool, shape operandShape, value string) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", fmt.Errorf("Field is required")
	}
	if shape != shapeValue {
		if !op.Geometric() {
			return "", fmt.Errorf("Operator %s does not compare shapes", op)
		}
		var err error
		if value, err = shape.wkt(value); err != nil {
			return "", err
		}
	}

	prefix := ""
	if negate {
		prefix = "not."
	}
	term := fmt.Sprintf("%s=%s%s.%s", field, prefix, op, value)
	if _, err := filter.ParseTerm(term); err != nil {
		return "", err
	}
	return term, nil
}
