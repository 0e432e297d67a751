package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEncode(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		topLevel  bool
		wantOp    string
		wantValue string
	}{
		{"eq string", Eq("foo"), true, "eq", "foo"},
		{"eq string nested", Eq("foo"), false, "eq", "%22foo%22"},
		{"neq int", Neq(3), true, "neq", "3"},
		{"gt", Gt(1.5), true, "gt", "1.5"},
		{"gte", Gte(0), true, "gte", "0"},
		{"lt", Lt(10), true, "lt", "10"},
		{"lte", Lte(-1), true, "lte", "-1"},
		{"like", Like("*smith*"), true, "like", "%2Asmith%2A"},
		{"ilike", ILike("a b"), true, "ilike", "a%20b"},
		{"in", In(1, 2, 3), true, "in", "(1,2,3)"},
		{"in strings", In("a", "b"), true, "in", "(%22a%22,%22b%22)"},
		{"is null", Is(nil), true, "is", "null"},
		{"is true", Is(true), true, "is", "true"},
		{"fts", FTS("cat & dog"), true, "fts", "cat%20%26%20dog"},
		{"plfts", PlainFTS("cat"), true, "plfts", "cat"},
		{"phfts", PhraseFTS("the cat"), true, "phfts", "the%20cat"},
		{"contains set", Contains(Set{"a", "b"}), true, "cs", "{%22a%22,%22b%22}"},
		{"contained in", ContainedIn(Set{1}), true, "cd", "{1}"},
		{"overlap", Overlap(Set{1, 2}), true, "ov", "{1,2}"},
		{"strictly left", StrictlyLeft("[1,10)"), true, "sl", "%5B1%2C10%29"},
		{"strictly right", StrictlyRight("[1,10)"), true, "sr", "%5B1%2C10%29"},
		{"not extend right", NotExtendRight("(1,2)"), true, "nxr", "%281%2C2%29"},
		{"not extend left", NotExtendLeft("(1,2)"), true, "nxl", "%281%2C2%29"},
		{"adjacent", AdjacentTo("(1,2)"), true, "adj", "%281%2C2%29"},
		{"negated", Not(Eq(1)), true, "not.eq", "1"},
		{"double negation", Not(Not(Eq(1))), true, "eq", "1"},
		{"negated method", Like("a*").Not(), true, "not.like", "a%2A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, value, err := tt.filter.Encode(tt.topLevel)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestFilterNotReturnsCopy(t *testing.T) {
	f := Eq(1)
	n := f.Not()
	assert.False(t, f.Negated)
	assert.True(t, n.Negated)
}

func TestFilterEncodeErrors(t *testing.T) {
	_, _, err := Filter{}.Encode(true)
	assert.ErrorIs(t, err, ErrUnknownOperator)

	_, _, err = Filter{Op: "between", Value: 1}.Encode(true)
	assert.ErrorIs(t, err, ErrUnknownOperator)

	_, _, err = Eq(struct{}{}).Encode(true)
	assert.ErrorIs(t, err, ErrUnsupportedValueType)
}

func TestOperators(t *testing.T) {
	ops := Operators()
	require.Len(t, ops, 21)
	for _, op := range ops {
		assert.True(t, op.Valid(), op)
	}
	assert.False(t, Operator("between").Valid())
	assert.True(t, OpOverlap.Geometric())
	assert.True(t, OpAdjacentTo.Geometric())
	assert.False(t, OpIn.Geometric())

	// the returned slice is a copy
	ops[0] = "bogus"
	assert.Equal(t, OpEqual, Operators()[0])
}

func TestGroupEncode(t *testing.T) {
	tests := []struct {
		name      string
		group     *Group
		wantToken string
		want      string
	}{
		{
			name:      "single member",
			group:     And(Named("a", Eq(1))),
			wantToken: "and",
			want:      "(a.eq.1)",
		},
		{
			name: "nested or",
			group: And(
				Named("a", Eq(1)),
				Or(Named("b", Eq("x")), Named("c", Not(Gt(2.5)))),
			),
			wantToken: "and",
			want:      "(a.eq.1,or(b.eq.%22x%22,c.not.gt.2.5))",
		},
		{
			name:      "not and",
			group:     NotAnd(Named("a", Gte(1)), Named("a", Lte(5))),
			wantToken: "not.and",
			want:      "(a.gte.1,a.lte.5)",
		},
		{
			name:      "not or",
			group:     NotOr(Named("a", Is(nil)), Named("b", In(1, 2))),
			wantToken: "not.or",
			want:      "(a.is.null,b.in.(1,2))",
		},
		{
			name:      "negated nested group",
			group:     Or(Named("x", Eq(1)), NotAnd(Named("y", Eq(2)), Named("z", Eq(3)))),
			wantToken: "or",
			want:      "(x.eq.1,not.and(y.eq.2,z.eq.3))",
		},
		{
			name:      "field is escaped",
			group:     And(Named("first name", Eq("Ann"))),
			wantToken: "and",
			want:      "(first%20name.eq.%22Ann%22)",
		},
		{
			name:      "pointer member",
			group:     Or(&NamedFilter{Field: "a", Filter: Eq(true)}),
			wantToken: "or",
			want:      "(a.eq.true)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.group.Encode()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantToken, tt.group.Token())
		})
	}
}

func TestGroupPreservesMemberOrder(t *testing.T) {
	g := Or(Named("c", Eq(3)), Named("a", Eq(1)), Named("b", Eq(2)))
	got, err := g.Encode()
	require.NoError(t, err)
	assert.Equal(t, "(c.eq.3,a.eq.1,b.eq.2)", got)
}

func TestGroupNot(t *testing.T) {
	g := Or(Named("a", Eq(1)))
	n := g.Not()
	assert.Equal(t, "or", g.Token())
	assert.Equal(t, "not.or", n.Token())
	assert.Equal(t, "or", n.Not().Token())
}

func TestGroupEncodeErrors(t *testing.T) {
	var nilGroup *Group
	var nilNamed *NamedFilter

	tests := []struct {
		name  string
		group *Group
		want  error
	}{
		{"empty", And(), ErrEmptyGroup},
		{"nil member", And(nil), ErrMalformedGroupMember},
		{"nil nested group", Or(Named("a", Eq(1)), nilGroup), ErrMalformedGroupMember},
		{"nil named pointer", Or(nilNamed), ErrMalformedGroupMember},
		{"empty field", And(Named("", Eq(1))), ErrMalformedGroupMember},
		{"nil receiver", nil, ErrMalformedGroupMember},
		{"bad kind", &Group{Kind: "xor", Members: []Member{Named("a", Eq(1))}}, ErrUnknownOperator},
		{"bad operand", And(Named("a", Eq(struct{}{}))), ErrUnsupportedValueType},
		{"empty nested", And(Named("a", Eq(1)), Or()), ErrEmptyGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.group.Encode()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConstructorsCopyMembers(t *testing.T) {
	members := []Member{Named("a", Eq(1))}
	g := And(members...)
	members[0] = Named("b", Eq(2))

	got, err := g.Encode()
	require.NoError(t, err)
	assert.Equal(t, "(a.eq.1)", got)
}
