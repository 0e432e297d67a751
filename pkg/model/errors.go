package model

import (
	"errors"
	"fmt"
)

var (
	ErrTypeMismatch        = errors.New("model: type mismatch")
	ErrInvalidEnumValue    = errors.New("model: invalid enum value")
	ErrUnknownField        = errors.New("model: unknown field")
	ErrUnknownEntityType   = errors.New("model: unknown entity type")
	ErrDuplicateEntityType = errors.New("model: duplicate entity type")
	// ErrNoTransport is returned by mutations on a record that was built
	// without a Transport.
	ErrNoTransport = errors.New("model: record has no transport")
)

// TypeMismatchError reports a value whose type does not match its field.
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("invalid type for %q (expected %s, got %s)", e.Field, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// InvalidEnumValueError reports a string outside an enum's declared values.
type InvalidEnumValueError struct {
	Field string
	Enum  string
	Value string
}

func (e *InvalidEnumValueError) Error() string {
	if e.Enum != "" {
		return fmt.Sprintf("invalid value %q for %q (enum %s)", e.Value, e.Field, e.Enum)
	}
	return fmt.Sprintf("invalid value %q for %q", e.Value, e.Field)
}

func (e *InvalidEnumValueError) Unwrap() error { return ErrInvalidEnumValue }
