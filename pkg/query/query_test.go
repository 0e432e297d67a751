package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
)

func TestBuildGolden(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
	}{
		{"empty", nil},
		{
			name: "select_and_pagination",
			params: &Params{
				Select: []string{"id", "name"},
				Limit:  Limit(10),
				Offset: Offset(20),
			},
		},
		{
			name: "simple_filters",
			params: &Params{Filters: []filter.Member{
				filter.Named("age", filter.Gte(18)),
				filter.Named("name", filter.Eq("Ann Lee")),
				filter.Named("deleted_at", filter.Is(nil)),
			}},
		},
		{
			name: "reserved_and_dotted",
			params: &Params{Filters: []filter.Member{
				filter.Named("order", filter.Eq("asc")),
				filter.Named("data.key", filter.Eq(1)),
				filter.Named("not.or", filter.Not(filter.Is(true))),
			}},
		},
		{
			name: "groups",
			params: &Params{Filters: []filter.Member{
				filter.Or(
					filter.Named("a", filter.Eq(1)),
					filter.NotAnd(filter.Named("b", filter.Gt(2)), filter.Named("c", filter.Lt(3))),
				),
				filter.NotOr(filter.Named("d", filter.In("x", "y"))),
			}},
		},
		{
			name: "duplicates_kept",
			params: &Params{
				Select: []string{"a"},
				Filters: []filter.Member{
					filter.Named("a", filter.Eq(1)),
					filter.Named("a", filter.Eq(1)),
				},
			},
		},
		{
			name: "negated_and_sets",
			params: &Params{Filters: []filter.Member{
				filter.Named("tags", filter.Contains(filter.Set{"go", "sql"})),
				filter.Named("name", filter.Not(filter.ILike("*bot*"))),
			}},
		},
		{
			name: "typed_values",
			params: &Params{
				Filters: []filter.Member{
					filter.Named("id", filter.Eq(uuid.MustParse("12345678-1234-5678-1234-567812345678"))),
					filter.Named("created_at", filter.Gt(time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC))),
					filter.Named("score", filter.Gte(0.1)),
				},
				Limit: Limit(1),
			},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.params)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(got+"\n"))
		})
	}
}

func TestBuildPointerMember(t *testing.T) {
	nf := filter.Named("a", filter.Eq(1))
	got, err := Build(&Params{Filters: []filter.Member{&nf}})
	require.NoError(t, err)
	assert.Equal(t, "a=eq.1", got)
}

func TestBuildErrors(t *testing.T) {
	var nilGroup *filter.Group
	var nilNamed *filter.NamedFilter

	tests := []struct {
		name   string
		params *Params
		want   error
	}{
		{"negative limit", &Params{Limit: Limit(-1)}, ErrNegativePagination},
		{"negative offset", &Params{Offset: Offset(-5)}, ErrNegativePagination},
		{"unsupported value", &Params{Filters: []filter.Member{filter.Named("a", filter.Eq(struct{}{}))}}, filter.ErrUnsupportedValueType},
		{"nil member", &Params{Filters: []filter.Member{nil}}, filter.ErrMalformedGroupMember},
		{"nil group", &Params{Filters: []filter.Member{nilGroup}}, filter.ErrMalformedGroupMember},
		{"nil named", &Params{Filters: []filter.Member{nilNamed}}, filter.ErrMalformedGroupMember},
		{"empty field", &Params{Filters: []filter.Member{filter.Named("", filter.Eq(1))}}, filter.ErrMalformedGroupMember},
		{"empty group", &Params{Filters: []filter.Member{filter.And()}}, filter.ErrEmptyGroup},
		{"reserved field bad value", &Params{Filters: []filter.Member{filter.Named("limit", filter.Eq(map[string]any{}))}}, filter.ErrUnsupportedValueType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.params)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIsReserved(t *testing.T) {
	for _, name := range []string{"select", "columns", "order", "limit", "offset", "and", "not.and", "or", "not.or"} {
		assert.True(t, IsReserved(name), name)
	}
	for _, name := range []string{"name", "not", "Select", ""} {
		assert.False(t, IsReserved(name), name)
	}
}

func TestTargetURL(t *testing.T) {
	base, err := url.Parse("http://localhost:3000/api/")
	require.NoError(t, err)

	tests := []struct {
		name   string
		entity string
		params *Params
		want   string
	}{
		{"no params", "people", nil, "http://localhost:3000/api/people"},
		{
			name:   "with query",
			entity: "people",
			params: &Params{Select: []string{"id"}, Filters: []filter.Member{filter.Named("age", filter.Lt(30))}},
			want:   "http://localhost:3000/api/people?select=id&age=lt.30",
		},
		{"space in name", "my table", nil, "http://localhost:3000/api/my%20table"},
		{"slash stays in segment", "a/b", nil, "http://localhost:3000/api/a%2Fb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TargetURL(base, tt.entity, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTargetURLErrors(t *testing.T) {
	base, _ := url.Parse("http://localhost:3000/")

	_, err := TargetURL(base, "rpc", nil)
	assert.ErrorIs(t, err, ErrReservedEntityType)

	_, err = TargetURL(base, "", nil)
	assert.ErrorIs(t, err, ErrEmptyEntityType)

	_, err = TargetURL(base, "people", &Params{Limit: Limit(-1)})
	assert.ErrorIs(t, err, ErrNegativePagination)
}
