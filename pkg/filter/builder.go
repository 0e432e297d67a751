// pkg/filter/builder.go

package filter

import "slices"

// Named pairs a column name with a filter.
func Named(field string, f Filter) NamedFilter {
	return NamedFilter{Field: field, Filter: f}
}

// Not negates a filter.
func Not(f Filter) Filter {
	return f.Not()
}

// Eq matches rows where the column equals value (=).
func Eq(value any) Filter { return Filter{Op: OpEqual, Value: value} }

// Neq matches rows where the column differs from value (<> or !=).
func Neq(value any) Filter { return Filter{Op: OpNotEqual, Value: value} }

// Gt is greater than (>).
func Gt(value any) Filter { return Filter{Op: OpGreaterThan, Value: value} }

// Gte is greater than or equal (>=).
func Gte(value any) Filter { return Filter{Op: OpGreaterThanOrEqual, Value: value} }

// Lt is less than (<).
func Lt(value any) Filter { return Filter{Op: OpLessThan, Value: value} }

// Lte is less than or equal (<=).
func Lte(value any) Filter { return Filter{Op: OpLessThanOrEqual, Value: value} }

// Like is a LIKE pattern match; use * in place of %.
func Like(pattern string) Filter { return Filter{Op: OpLike, Value: pattern} }

// ILike is a case-insensitive LIKE; use * in place of %.
func ILike(pattern string) Filter { return Filter{Op: OpILike, Value: pattern} }

// In matches any of the given values.
func In(values ...any) Filter { return Filter{Op: OpIn, Value: List(values)} }

// Is checks exact equality against null, true or false.
func Is(value any) Filter { return Filter{Op: OpIs, Value: value} }

// FTS is full-text search using to_tsquery (@@).
func FTS(query string) Filter { return Filter{Op: OpFullTextSearch, Value: query} }

// PlainFTS is full-text search using plainto_tsquery.
func PlainFTS(query string) Filter { return Filter{Op: OpPlainFullTextSearch, Value: query} }

// PhraseFTS is full-text search using phraseto_tsquery.
func PhraseFTS(query string) Filter { return Filter{Op: OpPhraseFullTextSearch, Value: query} }

// Contains is @>.
func Contains(value any) Filter { return Filter{Op: OpContains, Value: value} }

// ContainedIn is <@.
func ContainedIn(value any) Filter { return Filter{Op: OpContainedIn, Value: value} }

// Overlap is && (ranges or arrays with points in common).
func Overlap(value any) Filter { return Filter{Op: OpOverlap, Value: value} }

// StrictlyLeft is <<.
func StrictlyLeft(value any) Filter { return Filter{Op: OpStrictlyLeft, Value: value} }

// StrictlyRight is >>.
func StrictlyRight(value any) Filter { return Filter{Op: OpStrictlyRight, Value: value} }

// NotExtendRight is &<.
func NotExtendRight(value any) Filter { return Filter{Op: OpNotExtendRight, Value: value} }

// NotExtendLeft is &>.
func NotExtendLeft(value any) Filter { return Filter{Op: OpNotExtendLeft, Value: value} }

// AdjacentTo is -|-.
func AdjacentTo(value any) Filter { return Filter{Op: OpAdjacentTo, Value: value} }

// And groups members with logical AND.
func And(members ...Member) *Group {
	return &Group{Kind: KindAnd, Members: slices.Clone(members)}
}

// Or groups members with logical OR.
func Or(members ...Member) *Group {
	return &Group{Kind: KindOr, Members: slices.Clone(members)}
}

// NotAnd is a negated AND group.
func NotAnd(members ...Member) *Group {
	return &Group{Kind: KindAnd, Negated: true, Members: slices.Clone(members)}
}

// NotOr is a negated OR group.
func NotOr(members ...Member) *Group {
	return &Group{Kind: KindOr, Negated: true, Members: slices.Clone(members)}
}
