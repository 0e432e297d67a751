// Package model binds rows to caller-supplied schemas: values are validated
// on assignment, decoded from JSON responses and flattened for writes.
package model

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Kind is a primitive column type.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindFloat
	KindBool
	KindUUID
	KindTimestamp
	// KindObject holds JSON objects as map[string]any.
	KindObject
	// KindArray holds JSON arrays as []any.
	KindArray
)

var kindNames = map[Kind]string{
	KindString:    "string",
	KindInt:       "int",
	KindFloat:     "float",
	KindBool:      "bool",
	KindUUID:      "uuid",
	KindTimestamp: "timestamp",
	KindObject:    "object",
	KindArray:     "array",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a type name such as "uuid" to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// FieldType describes what a field may hold. It is one of Primitive, Enum,
// Nested or Reference.
type FieldType interface {
	fieldType()
	String() string
}

// Primitive is a scalar or JSON column.
type Primitive struct {
	Kind Kind
}

// Enum is a string column restricted to Values.
type Enum struct {
	Name   string
	Values []string
}

// Nested is an embedded record of another schema, sent as a JSON object.
type Nested struct {
	Schema *Schema
}

// Reference points at another record. On the wire it is flattened to the
// value of Field in the target schema.
type Reference struct {
	Schema *Schema
	Field  string
}

func (Primitive) fieldType() {}
func (Enum) fieldType()      {}
func (Nested) fieldType()    {}
func (Reference) fieldType() {}

func (p Primitive) String() string { return p.Kind.String() }

func (e Enum) String() string {
	if e.Name != "" {
		return "enum " + e.Name
	}
	return "enum"
}

func (n Nested) String() string {
	return "record " + n.Schema.EntityType()
}

func (r Reference) String() string {
	return "reference " + r.Schema.EntityType() + "." + r.Field
}

// Field is a named FieldType used to build a Schema.
type Field struct {
	Name string
	Type FieldType
}

// Schema maps the fields of one entity type to their types. It is immutable
// once built.
type Schema struct {
	entityType string
	fields     map[string]FieldType
}

// NewSchema builds a schema and checks that every nested and referenced
// schema is set and that referenced fields exist.
func NewSchema(entityType string, fields ...Field) (*Schema, error) {
	if entityType == "" {
		return nil, fmt.Errorf("model: schema needs an entity type")
	}

	s := &Schema{entityType: entityType, fields: make(map[string]FieldType, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("model: %s: field without a name", entityType)
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, fmt.Errorf("model: %s: duplicate field %q", entityType, f.Name)
		}

		switch t := f.Type.(type) {
		case Primitive:
			if _, ok := kindNames[t.Kind]; !ok {
				return nil, fmt.Errorf("model: %s.%s: unknown kind %d", entityType, f.Name, int(t.Kind))
			}
		case Enum:
			if len(t.Values) == 0 {
				return nil, fmt.Errorf("model: %s.%s: enum without values", entityType, f.Name)
			}
			t.Values = slices.Clone(t.Values)
			f.Type = t
		case Nested:
			if t.Schema == nil {
				return nil, fmt.Errorf("model: %s.%s: nested schema is nil", entityType, f.Name)
			}
		case Reference:
			if t.Schema == nil {
				return nil, fmt.Errorf("model: %s.%s: referenced schema is nil", entityType, f.Name)
			}
			if _, ok := t.Schema.fields[t.Field]; !ok {
				return nil, fmt.Errorf("model: %s.%s: %w: %s has no field %q",
					entityType, f.Name, ErrUnknownField, t.Schema.entityType, t.Field)
			}
		default:
			return nil, fmt.Errorf("model: %s.%s: unsupported field type %T", entityType, f.Name, f.Type)
		}
		s.fields[f.Name] = f.Type
	}
	return s, nil
}

// MustNewSchema is like NewSchema but panics on error.
func MustNewSchema(entityType string, fields ...Field) *Schema {
	s, err := NewSchema(entityType, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// EntityType returns the table or view name the schema describes.
func (s *Schema) EntityType() string {
	if s == nil {
		return ""
	}
	return s.entityType
}

// FieldType returns the type of the named field.
func (s *Schema) FieldType(name string) (FieldType, bool) {
	t, ok := s.fields[name]
	return t, ok
}

// FieldNames returns the declared field names in sorted order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that value may be stored in field. Nil is always accepted.
func (s *Schema) Validate(field string, value any) error {
	t, ok := s.fields[field]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.entityType, field)
	}
	if value == nil {
		return nil
	}

	switch t := t.(type) {
	case Primitive:
		if !matchesKind(t.Kind, value) {
			return &TypeMismatchError{Field: field, Expected: t.Kind.String(), Actual: typeName(value)}
		}
	case Enum:
		str, ok := value.(string)
		if !ok {
			return &TypeMismatchError{Field: field, Expected: t.String(), Actual: typeName(value)}
		}
		if !slices.Contains(t.Values, str) {
			return &InvalidEnumValueError{Field: field, Enum: t.Name, Value: str}
		}
	case Nested:
		if !boundTo(value, t.Schema) {
			return &TypeMismatchError{Field: field, Expected: t.String(), Actual: typeName(value)}
		}
	case Reference:
		if !boundTo(value, t.Schema) {
			return &TypeMismatchError{Field: field, Expected: t.String(), Actual: typeName(value)}
		}
	}
	return nil
}

func matchesKind(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindInt:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		}
	case KindFloat:
		switch v.(type) {
		case float32, float64:
			return true
		}
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindUUID:
		_, ok := v.(uuid.UUID)
		return ok
	case KindTimestamp:
		_, ok := v.(time.Time)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	case KindArray:
		_, ok := v.([]any)
		return ok
	}
	return false
}

func boundTo(v any, target *Schema) bool {
	r, ok := v.(*Record)
	return ok && r != nil && r.schema.entityType == target.entityType
}

func typeName(v any) string {
	if r, ok := v.(*Record); ok && r != nil {
		return "record " + r.EntityType()
	}
	return fmt.Sprintf("%T", v)
}
