package model

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/robert-malhotra/go-postgrest-client/internal/wire"
)

// Transport is what a Record needs to persist itself.
type Transport interface {
	// Create inserts row into entityType and returns the created rows when
	// the transport asks for a representation.
	Create(ctx context.Context, entityType string, row map[string]any) ([]map[string]any, error)
	// ReturnsRepresentation reports whether Create returns the stored rows.
	ReturnsRepresentation() bool
}

// Record is a set of field values bound to a Schema. Every value is validated
// when it is stored. A Record is not safe for concurrent mutation.
type Record struct {
	schema    *Schema
	transport Transport
	data      map[string]any
}

// NewRecord validates data against schema and returns a record holding a copy
// of it. transport may be nil for records that are never inserted.
func NewRecord(schema *Schema, transport Transport, data map[string]any) (*Record, error) {
	if schema == nil {
		return nil, fmt.Errorf("model: nil schema")
	}
	for _, key := range slices.Sorted(maps.Keys(data)) {
		if err := schema.Validate(key, data[key]); err != nil {
			return nil, err
		}
	}
	r := &Record{schema: schema, transport: transport, data: make(map[string]any, len(data))}
	maps.Copy(r.data, data)
	return r, nil
}

// Schema returns the schema the record is bound to.
func (r *Record) Schema() *Schema { return r.schema }

// EntityType returns the entity type of the record's schema.
func (r *Record) EntityType() string { return r.schema.EntityType() }

// Get returns the value stored for field.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.data[field]
	return v, ok
}

// Set validates and stores value under field.
func (r *Record) Set(field string, value any) error {
	if err := r.schema.Validate(field, value); err != nil {
		return err
	}
	r.data[field] = value
	return nil
}

// Has reports whether field holds a value, including an explicit nil.
func (r *Record) Has(field string) bool {
	_, ok := r.data[field]
	return ok
}

// Delete removes field from the record.
func (r *Record) Delete(field string) {
	delete(r.data, field)
}

// Len returns the number of fields present.
func (r *Record) Len() int { return len(r.data) }

// Keys returns the present fields in sorted order.
func (r *Record) Keys() []string {
	return slices.Sorted(maps.Keys(r.data))
}

// All iterates the present fields in sorted order.
func (r *Record) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, k := range r.Keys() {
			if !yield(k, r.data[k]) {
				return
			}
		}
	}
}

// ShallowMap copies the record's values, replacing each reference with the
// value of the referenced field. This is the form sent on create and update.
func (r *Record) ShallowMap() map[string]any {
	out := make(map[string]any, len(r.data))
	for k, v := range r.data {
		if ref, ok := r.schema.fields[k].(Reference); ok {
			if target, ok := v.(*Record); ok && target != nil {
				v = target.data[ref.Field]
			}
		}
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the shallow map.
func (r *Record) MarshalJSON() ([]byte, error) {
	return wire.Marshal(r.ShallowMap())
}

// Insert creates the record through its transport. When the transport
// returns a representation, the single returned row is decoded back into
// the record.
func (r *Record) Insert(ctx context.Context) error {
	if r.transport == nil {
		return ErrNoTransport
	}

	rows, err := r.transport.Create(ctx, r.EntityType(), r.ShallowMap())
	if err != nil {
		return fmt.Errorf("inserting %s: %w", r.EntityType(), err)
	}
	if !r.transport.ReturnsRepresentation() {
		return nil
	}
	if len(rows) != 1 {
		return fmt.Errorf("inserting %s: expected exactly one row, got %d", r.EntityType(), len(rows))
	}

	decoded, err := decodeFields(r.schema, r.transport, rows[0])
	if err != nil {
		return fmt.Errorf("inserting %s: %w", r.EntityType(), err)
	}
	maps.Copy(r.data, decoded)
	return nil
}
