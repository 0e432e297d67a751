package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperator(t *testing.T) {
	op, negated, err := ParseOperator("gte")
	require.NoError(t, err)
	assert.Equal(t, OpGreaterThanOrEqual, op)
	assert.False(t, negated)

	op, negated, err = ParseOperator("not.ilike")
	require.NoError(t, err)
	assert.Equal(t, OpILike, op)
	assert.True(t, negated)

	_, _, err = ParseOperator("between")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestParseTerm(t *testing.T) {
	tests := []struct {
		term string
		want NamedFilter
	}{
		{"age=gte.18", Named("age", Gte("18"))},
		{"name=not.like.*foo*", Named("name", Not(Like("*foo*")))},
		{"deleted_at=is.null", Named("deleted_at", Is(nil))},
		{"active=is.TRUE", Named("active", Is(true))},
		{"status=in.(active,pending)", Named("status", Filter{Op: OpIn, Value: List{"active", "pending"}})},
		{`status=in.(active,"on,hold")`, Named("status", Filter{Op: OpIn, Value: List{"active", "on,hold"}})},
		{`q=in.("say \"hi\"")`, Named("q", Filter{Op: OpIn, Value: List{`say "hi"`}})},
		{"status=in.()", Named("status", Filter{Op: OpIn, Value: List{}})},
		{"tags=cs.{a,b}", Named("tags", Contains(Set{"a", "b"}))},
		{"title=eq.(not a list)", Named("title", Eq("(not a list)"))},
		{"expr=eq.a=b", Named("expr", Eq("a=b"))},
		{"version=eq.1.2.3", Named("version", Eq("1.2.3"))},
		{"area=ov.BOX(0 0,2 3)", Named("area", Overlap("((2,3),(0,0))"))},
		{"spot=sl.point(1.5 -2)", Named("spot", StrictlyLeft("(1.5,-2)"))},
		{"zone=cs.POLYGON((0 0,4 0,4 4,0 0))", Named("zone", Contains("((0,0),(4,0),(4,4))"))},
		{"route=not.adj.LINESTRING(0 0,1 1)", Named("route", Not(AdjacentTo("[(0,0),(1,1)]")))},
		{"label=eq.POINT(1 2)", Named("label", Eq("POINT(1 2)"))},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := ParseTerm(tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTermErrors(t *testing.T) {
	tests := []struct {
		term string
		want error
	}{
		{"no-equals", nil},
		{"=eq.1", nil},
		{"age=gte", nil},
		{"age=between.1", ErrUnknownOperator},
		{`x=in.("a)`, nil},
		{"area=ov.BOX(0 0)", ErrUnsupportedValueType},
		{"area=ov.POINT(a b)", ErrUnsupportedValueType},
		{"area=ov.POLYGON((0 0,1 1))", ErrUnsupportedValueType},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			_, err := ParseTerm(tt.term)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
