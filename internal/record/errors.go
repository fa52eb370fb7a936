package record

import (
	"errors"
	"fmt"

	"discordcore/pkg/domain"
)

var (
	ErrMissingField = errors.New("required field missing")
	ErrUnknownKind  = errors.New("unknown record kind")
)

// DecodeError reports a payload that could not be turned into a complete record.
type DecodeError struct {
	Kind  domain.Kind
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode %s: field %q: %v", e.Kind, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type presence interface {
	IsSet() bool
}

type field struct {
	name  string
	value presence
}

func checkRequired(kind domain.Kind, fields ...field) error {
	for _, f := range fields {
		if !f.value.IsSet() {
			return &DecodeError{Kind: kind, Field: f.name, Err: ErrMissingField}
		}
	}
	return nil
}

// nested prefixes the field path of a decode error raised by an embedded record.
func nested(kind domain.Kind, path string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return &DecodeError{Kind: kind, Field: path + "." + de.Field, Err: de.Err}
	}
	return &DecodeError{Kind: kind, Field: path, Err: err}
}
