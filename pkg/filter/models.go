// pkg/filter/models.go

package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnsupportedValueType is returned when a filter operand has a runtime
	// type that has no query-string representation.
	ErrUnsupportedValueType = errors.New("filter: unsupported value type")
	// ErrMalformedGroupMember is returned when a group member is neither a
	// named filter nor a nested group.
	ErrMalformedGroupMember = errors.New("filter: malformed group member")
	// ErrEmptyGroup is returned when a group has no members.
	ErrEmptyGroup = errors.New("filter: group has no members")
	// ErrUnknownOperator is returned for operators outside the catalog.
	ErrUnknownOperator = errors.New("filter: unknown operator")
)

// Operator is a horizontal filter operator token.
type Operator string

const (
	OpEqual                Operator = "eq"
	OpNotEqual             Operator = "neq"
	OpGreaterThan          Operator = "gt"
	OpGreaterThanOrEqual   Operator = "gte"
	OpLessThan             Operator = "lt"
	OpLessThanOrEqual      Operator = "lte"
	OpLike                 Operator = "like"
	OpILike                Operator = "ilike"
	OpIn                   Operator = "in"
	OpIs                   Operator = "is"
	OpFullTextSearch       Operator = "fts"
	OpPlainFullTextSearch  Operator = "plfts"
	OpPhraseFullTextSearch Operator = "phfts"
	OpContains             Operator = "cs"
	OpContainedIn          Operator = "cd"
	OpOverlap              Operator = "ov"
	OpStrictlyLeft         Operator = "sl"
	OpStrictlyRight        Operator = "sr"
	OpNotExtendRight       Operator = "nxr"
	OpNotExtendLeft        Operator = "nxl"
	OpAdjacentTo           Operator = "adj"
)

var catalog = []Operator{
	OpEqual, OpNotEqual,
	OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
	OpLike, OpILike, OpIn, OpIs,
	OpFullTextSearch, OpPlainFullTextSearch, OpPhraseFullTextSearch,
	OpContains, OpContainedIn, OpOverlap,
	OpStrictlyLeft, OpStrictlyRight, OpNotExtendRight, OpNotExtendLeft, OpAdjacentTo,
}

// Operators returns every supported operator in catalog order.
func Operators() []Operator {
	return slices.Clone(catalog)
}

// Valid reports whether op is part of the catalog.
func (op Operator) Valid() bool {
	return slices.Contains(catalog, op)
}

// Geometric reports whether op applies to geometric types, so its operand may
// be given as WKT.
func (op Operator) Geometric() bool {
	switch op {
	case OpContains, OpContainedIn, OpOverlap,
		OpStrictlyLeft, OpStrictlyRight, OpNotExtendRight, OpNotExtendLeft, OpAdjacentTo:
		return true
	}
	return false
}

const negationPrefix = "not."

// Filter is a leaf predicate: an operator applied to a single operand.
// Filters are values; Not returns a modified copy.
type Filter struct {
	Op      Operator
	Value   any
	Negated bool
}

// Not returns f with its negation flipped.
func (f Filter) Not() Filter {
	f.Negated = !f.Negated
	return f
}

// Token returns the operator token, including the "not." prefix when negated.
func (f Filter) Token() string {
	if f.Negated {
		return negationPrefix + string(f.Op)
	}
	return string(f.Op)
}

// Encode returns the operator token and the encoded operand.
func (f Filter) Encode(topLevel bool) (string, string, error) {
	if !f.Op.Valid() {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownOperator, f.Op)
	}
	value, err := EncodeValue(f.Value, topLevel)
	if err != nil {
		return "", "", fmt.Errorf("encode %s operand: %w", f.Op, err)
	}
	return f.Token(), value, nil
}

// Member is an element of a Group: either a NamedFilter or a nested *Group.
type Member interface {
	member()
}

// NamedFilter binds a Filter to the column it applies to.
type NamedFilter struct {
	Field  string
	Filter Filter
}

func (NamedFilter) member() {}

// Encode renders the filter in its grouped form, "<field>.<op>.<value>".
func (n NamedFilter) Encode() (string, error) {
	if n.Field == "" {
		return "", fmt.Errorf("%w: empty field name", ErrMalformedGroupMember)
	}
	op, value, err := n.Filter.Encode(false)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", n.Field, err)
	}
	return Escape(n.Field) + "." + op + "." + value, nil
}

// GroupKind is the logical operator joining the members of a Group.
type GroupKind string

const (
	KindAnd GroupKind = "and"
	KindOr  GroupKind = "or"
)

// Group is a logical AND/OR over named filters and nested groups.
// Member order is kept exactly as supplied.
type Group struct {
	Kind    GroupKind
	Negated bool
	Members []Member
}

func (*Group) member() {}

// Token returns the group's parameter name: and, or, not.and or not.or.
func (g *Group) Token() string {
	if g.Negated {
		return negationPrefix + string(g.Kind)
	}
	return string(g.Kind)
}

// Not returns a copy of g with its negation flipped.
func (g *Group) Not() *Group {
	cp := *g
	cp.Negated = !g.Negated
	cp.Members = slices.Clone(g.Members)
	return &cp
}

// Encode renders the member list, "(<m1>,<m2>,...)".
func (g *Group) Encode() (string, error) {
	if g == nil {
		return "", fmt.Errorf("%w: nil group", ErrMalformedGroupMember)
	}
	if g.Kind != KindAnd && g.Kind != KindOr {
		return "", fmt.Errorf("%w: group kind %q", ErrUnknownOperator, g.Kind)
	}
	if len(g.Members) == 0 {
		return "", ErrEmptyGroup
	}

	parts := make([]string, 0, len(g.Members))
	for i, m := range g.Members {
		var (
			part string
			err  error
		)
		switch m := m.(type) {
		case NamedFilter:
			part, err = m.Encode()
		case *NamedFilter:
			if m == nil {
				return "", fmt.Errorf("%w: member %d is nil", ErrMalformedGroupMember, i)
			}
			part, err = m.Encode()
		case *Group:
			if m == nil {
				return "", fmt.Errorf("%w: member %d is nil", ErrMalformedGroupMember, i)
			}
			part, err = m.Encode()
			part = m.Token() + part
		default:
			return "", fmt.Errorf("%w: member %d has type %T", ErrMalformedGroupMember, i, m)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, ",") + ")", nil
}
