package model

import (
	"fmt"
	"slices"
)

// Registry maps entity types to schemas. It is immutable after NewRegistry and
// safe for concurrent use.
type Registry struct {
	order   []string
	schemas map[string]*Schema
}

// NewRegistry registers schemas in order. Two schemas with the same entity
// type are rejected.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if s == nil {
			return nil, fmt.Errorf("model: nil schema in registry")
		}
		if _, dup := r.schemas[s.entityType]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntityType, s.entityType)
		}
		r.schemas[s.entityType] = s
		r.order = append(r.order, s.entityType)
	}
	return r, nil
}

// Lookup returns the schema registered for entityType.
func (r *Registry) Lookup(entityType string) (*Schema, error) {
	s, ok := r.schemas[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return s, nil
}

// EntityTypes returns the registered entity types in registration order.
func (r *Registry) EntityTypes() []string {
	return slices.Clone(r.order)
}
