// pkg/filter/parser.go

package filter

import (
	"fmt"
	"strings"
)

// ParseOperator parses an operator token such as "gte" or "not.like".
func ParseOperator(token string) (Operator, bool, error) {
	negated := false
	if rest, ok := strings.CutPrefix(token, negationPrefix); ok {
		negated = true
		token = rest
	}
	op := Operator(token)
	if !op.Valid() {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownOperator, token)
	}
	return op, negated, nil
}

// ParseTerm parses the command-line form "field=[not.]op.value" into a named
// filter. Operands are kept as strings except for the shapes below:
//
//	in, cs, cd, ov with "(a,b)"  -> List
//	any operator with "{a,b}"    -> Set
//	is null|true|false           -> nil, true, false
//	geometric operators with WKT -> geometric literal, see ParseWKT
//
// Elements of a list or set may be double-quoted to carry commas.
func ParseTerm(term string) (NamedFilter, error) {
	field, expr, ok := strings.Cut(term, "=")
	if !ok || field == "" {
		return NamedFilter{}, fmt.Errorf("filter term %q: expected field=op.value", term)
	}

	negated := false
	if rest, ok := strings.CutPrefix(expr, negationPrefix); ok {
		negated = true
		expr = rest
	}
	token, raw, ok := strings.Cut(expr, ".")
	if !ok {
		return NamedFilter{}, fmt.Errorf("filter term %q: expected op.value", term)
	}
	op := Operator(token)
	if !op.Valid() {
		return NamedFilter{}, fmt.Errorf("filter term %q: %w: %q", term, ErrUnknownOperator, token)
	}

	value, err := parseOperand(op, raw)
	if err != nil {
		return NamedFilter{}, fmt.Errorf("filter term %q: %w", term, err)
	}
	return Named(field, Filter{Op: op, Value: value, Negated: negated}), nil
}

func parseOperand(op Operator, raw string) (any, error) {
	switch {
	case op.Geometric() && isWKT(raw):
		return ParseWKT(raw)
	case op == OpIs:
		switch strings.ToLower(raw) {
		case "null":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return raw, nil
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		elems, err := splitElements(raw[1 : len(raw)-1])
		if err != nil {
			return nil, err
		}
		return Set(elems), nil
	case listOperand(op) && strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")"):
		elems, err := splitElements(raw[1 : len(raw)-1])
		if err != nil {
			return nil, err
		}
		return List(elems), nil
	}
	return raw, nil
}

func listOperand(op Operator) bool {
	switch op {
	case OpIn, OpContains, OpContainedIn, OpOverlap:
		return true
	}
	return false
}

// splitElements splits a comma separated list, honouring double quotes and
// backslash escapes inside them.
func splitElements(s string) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return []any{}, nil
	}

	var (
		out     []any
		cur     strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case quoted && r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case !quoted && r == ',':
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if quoted || escaped {
		return nil, fmt.Errorf("unterminated quote in %q", s)
	}
	return append(out, cur.String()), nil
}
