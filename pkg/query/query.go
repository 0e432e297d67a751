// Package query assembles the query string and target URL of a read request.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
)

var (
	// ErrReservedEntityType is returned for entity types the server reserves
	// for its own endpoints.
	ErrReservedEntityType = errors.New("query: reserved entity type")
	// ErrEmptyEntityType is returned when no entity type is given.
	ErrEmptyEntityType = errors.New("query: empty entity type")
	// ErrNegativePagination is returned for a negative limit or offset.
	ErrNegativePagination = errors.New("query: negative limit or offset")
)

// reservedNames are query parameters with a meaning of their own. A filter on
// a column with one of these names has to go through a group.
var reservedNames = []string{
	"select", "columns", "order", "limit", "offset",
	"and", "not.and", "or", "not.or",
}

// reservedEntityTypes cannot be addressed as tables or views.
var reservedEntityTypes = []string{"rpc"}

// IsReserved reports whether name is a reserved query parameter.
func IsReserved(name string) bool {
	return slices.Contains(reservedNames, name)
}

// Params describes a read request. The zero value selects every column of
// every row.
type Params struct {
	Select  []string
	Filters []filter.Member
	Limit   *int
	Offset  *int
}

// Limit returns a pointer to n for use in Params.
func Limit(n int) *int { return &n }

// Offset returns a pointer to n for use in Params.
func Offset(n int) *int { return &n }

// Build renders p as a query string. Terms keep the order of p.Filters and
// duplicates are kept. A nil p yields the empty string.
func Build(p *Params) (string, error) {
	if p == nil {
		return "", nil
	}

	var terms []string
	if len(p.Select) > 0 {
		terms = append(terms, "select="+strings.Join(p.Select, ","))
	}

	for i, m := range p.Filters {
		term, err := encodeMember(m)
		if err != nil {
			return "", fmt.Errorf("filter %d: %w", i, err)
		}
		terms = append(terms, term)
	}

	if p.Limit != nil {
		if *p.Limit < 0 {
			return "", fmt.Errorf("%w: limit %d", ErrNegativePagination, *p.Limit)
		}
		terms = append(terms, "limit="+strconv.Itoa(*p.Limit))
	}
	if p.Offset != nil {
		if *p.Offset < 0 {
			return "", fmt.Errorf("%w: offset %d", ErrNegativePagination, *p.Offset)
		}
		terms = append(terms, "offset="+strconv.Itoa(*p.Offset))
	}

	return strings.Join(terms, "&"), nil
}

func encodeMember(m filter.Member) (string, error) {
	switch m := m.(type) {
	case *filter.Group:
		if m == nil {
			return "", fmt.Errorf("%w: nil group", filter.ErrMalformedGroupMember)
		}
		enc, err := m.Encode()
		if err != nil {
			return "", err
		}
		return m.Token() + "=" + enc, nil
	case *filter.NamedFilter:
		if m == nil {
			return "", fmt.Errorf("%w: nil filter", filter.ErrMalformedGroupMember)
		}
		return encodeNamed(*m)
	case filter.NamedFilter:
		return encodeNamed(m)
	default:
		return "", fmt.Errorf("%w: %T", filter.ErrMalformedGroupMember, m)
	}
}

func encodeNamed(n filter.NamedFilter) (string, error) {
	if n.Field == "" {
		return "", fmt.Errorf("%w: empty field name", filter.ErrMalformedGroupMember)
	}
	// Dotted or reserved names would be misread as parameters of their own,
	// so they travel inside a single-member AND group.
	if IsReserved(n.Field) || strings.Contains(n.Field, ".") {
		return encodeMember(filter.And(n))
	}
	op, value, err := n.Filter.Encode(true)
	if err != nil {
		return "", fmt.Errorf("field %q: %w", n.Field, err)
	}
	return filter.Escape(n.Field) + "=" + op + "." + value, nil
}

// TargetURL resolves the collection URL of entityType against base and
// attaches the query built from p.
func TargetURL(base *url.URL, entityType string, p *Params) (*url.URL, error) {
	if entityType == "" {
		return nil, ErrEmptyEntityType
	}
	if slices.Contains(reservedEntityTypes, entityType) {
		return nil, fmt.Errorf("%w: %q", ErrReservedEntityType, entityType)
	}

	q, err := Build(p)
	if err != nil {
		return nil, err
	}

	// Escape keeps "/", which would split the entity into two segments.
	ref := &url.URL{
		Path:     entityType,
		RawPath:  strings.ReplaceAll(filter.Escape(entityType), "/", "%2F"),
		RawQuery: q,
	}
	if base == nil {
		return ref, nil
	}
	return base.ResolveReference(ref), nil
}
