package entity

import (
	"errors"
	"fmt"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

var (
	// ErrFieldUnset is returned by relationship accessors whose foreign key is
	// an optional field absent from the payload.
	ErrFieldUnset = errors.New("field not present in payload")
	// ErrMissingScope is returned when a record that does not name its parent
	// is wrapped without one.
	ErrMissingScope = errors.New("parent scope required")
)

// MissingIdentifierError is returned by ID for records that carry no identifier.
type MissingIdentifierError struct {
	Kind domain.Kind
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("%s has no identifier", e.Kind)
}

// InconsistentDataError reports a record that breaks the decode contract: a
// required field is unset, or a resolver returned the wrong kind of entity.
// Required-field accessors panic with it; it is never substituted by a default.
type InconsistentDataError struct {
	Kind   domain.Kind
	Field  string
	Detail string
}

func (e *InconsistentDataError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("inconsistent %s data: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("inconsistent %s data: required field %q is unset", e.Kind, e.Field)
}

func required[T any](kind domain.Kind, name string, f record.Required[T]) T {
	v, ok := f.Get()
	if !ok {
		panic(&InconsistentDataError{Kind: kind, Field: name})
	}
	return v
}
