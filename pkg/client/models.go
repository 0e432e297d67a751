package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/robert-malhotra/go-postgrest-client/pkg/filter"
	"github.com/robert-malhotra/go-postgrest-client/pkg/model"
)

// RowClient is the part of *Client a ModelClient uses.
type RowClient interface {
	Select(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) ([]Row, error)
	SelectOne(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) (Row, error)
	Insert(ctx context.Context, entityType string, item any, returning Returning, opts ...RequestOption) (*InsertResult, error)
	Update(ctx context.Context, entityType string, patch any, filters []filter.Member, returning Returning, opts ...RequestOption) ([]Row, error)
	Delete(ctx context.Context, entityType string, filters []filter.Member, opts ...RequestOption) error
}

var _ RowClient = (*Client)(nil)

// ModelOption configures a ModelClient.
type ModelOption func(*ModelClient)

// WithReturning sets what record inserts ask for. ReturnRepresentation makes
// Record.Insert refresh the record from the stored row.
func WithReturning(r Returning) ModelOption {
	return func(mc *ModelClient) { mc.returning = r }
}

// ModelClient decodes rows into records using a schema registry. Unknown
// entity types are rejected before any request is made.
type ModelClient struct {
	rows      RowClient
	registry  *model.Registry
	returning Returning
}

var _ model.Transport = (*ModelClient)(nil)

// NewModelClient wraps rows with registry.
func NewModelClient(rows RowClient, registry *model.Registry, opts ...ModelOption) (*ModelClient, error) {
	if rows == nil {
		return nil, errors.New("postgrest: nil row client")
	}
	if registry == nil {
		return nil, errors.New("postgrest: nil registry")
	}
	mc := &ModelClient{rows: rows, registry: registry, returning: ReturnMinimal}
	for _, o := range opts {
		o(mc)
	}
	switch mc.returning {
	case ReturnMinimal, ReturnRepresentation:
	default:
		return nil, &InvalidReturningError{Returning: mc.returning}
	}
	return mc, nil
}

// Registry returns the registry records are decoded with.
func (mc *ModelClient) Registry() *model.Registry { return mc.registry }

// New returns an empty-or-populated record of entityType bound to mc, ready
// for Insert.
func (mc *ModelClient) New(entityType string, data map[string]any) (*model.Record, error) {
	schema, err := mc.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return model.NewRecord(schema, mc, data)
}

// Select fetches and decodes the rows of entityType matching p.
func (mc *ModelClient) Select(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) ([]*model.Record, error) {
	schema, err := mc.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	rows, err := mc.rows.Select(ctx, entityType, p, opts...)
	if err != nil {
		return nil, err
	}
	return mc.decode(schema, rows)
}

// SelectOne fetches and decodes exactly one row.
func (mc *ModelClient) SelectOne(ctx context.Context, entityType string, p *SelectParams, opts ...RequestOption) (*model.Record, error) {
	schema, err := mc.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	row, err := mc.rows.SelectOne(ctx, entityType, p, opts...)
	if err != nil {
		return nil, err
	}
	rec, err := model.FromJSON(schema, mc, row)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", entityType, err)
	}
	return rec, nil
}

// Update validates patch against the schema, applies it to the rows matching
// filters and, for ReturnRepresentation, decodes the updated rows. patch is a
// *model.Record or a field map.
func (mc *ModelClient) Update(ctx context.Context, entityType string, patch any, filters []filter.Member, returning Returning, opts ...RequestOption) ([]*model.Record, error) {
	schema, err := mc.registry.Lookup(entityType)
	if err != nil {
		return nil, err
	}

	var body map[string]any
	switch p := patch.(type) {
	case *model.Record:
		if p.EntityType() != entityType {
			return nil, fmt.Errorf("%w: patch is a %s record, not %s", model.ErrTypeMismatch, p.EntityType(), entityType)
		}
		body = p.ShallowMap()
	case map[string]any:
		rec, err := model.NewRecord(schema, nil, p)
		if err != nil {
			return nil, err
		}
		body = rec.ShallowMap()
	default:
		return nil, fmt.Errorf("%w: patch must be a record or a field map, got %T", model.ErrTypeMismatch, patch)
	}

	rows, err := mc.rows.Update(ctx, entityType, body, filters, returning, opts...)
	if err != nil {
		return nil, err
	}
	if returning != ReturnRepresentation {
		return nil, nil
	}
	return mc.decode(schema, rows)
}

// Delete removes the rows of entityType matching filters.
func (mc *ModelClient) Delete(ctx context.Context, entityType string, filters []filter.Member, opts ...RequestOption) error {
	if _, err := mc.registry.Lookup(entityType); err != nil {
		return err
	}
	return mc.rows.Delete(ctx, entityType, filters, opts...)
}

// Create implements model.Transport.
func (mc *ModelClient) Create(ctx context.Context, entityType string, row map[string]any) ([]map[string]any, error) {
	if _, err := mc.registry.Lookup(entityType); err != nil {
		return nil, err
	}
	res, err := mc.rows.Insert(ctx, entityType, row, mc.returning)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// ReturnsRepresentation implements model.Transport.
func (mc *ModelClient) ReturnsRepresentation() bool {
	return mc.returning == ReturnRepresentation
}

func (mc *ModelClient) decode(schema *model.Schema, rows []Row) ([]*model.Record, error) {
	out := make([]*model.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := model.FromJSON(schema, mc, row)
		if err != nil {
			return nil, fmt.Errorf("decoding %s row %d: %w", schema.EntityType(), i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
