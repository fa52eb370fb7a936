package record

import (
	"encoding/json"
	"fmt"

	"discordcore/pkg/domain"
)

// validatable ties a record struct to its pointer type for generic decoding.
type validatable[T any] interface {
	*T
	Record
}

func decode[T any, PT validatable[T]](kind domain.Kind, data []byte) (PT, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &DecodeError{Kind: kind, Err: err}
	}
	rec := PT(&v)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeList[T any, PT validatable[T]](kind domain.Kind, data []byte) ([]PT, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DecodeError{Kind: kind, Err: err}
	}
	out := make([]PT, 0, len(raw))
	for i, item := range raw {
		rec, err := decode[T, PT](kind, item)
		if err != nil {
			return nil, nested(kind, fmt.Sprintf("[%d]", i), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func DecodeEmoji(data []byte) (*Emoji, error) {
	return decode[Emoji](domain.KindEmoji, data)
}

func DecodeRole(data []byte) (*Role, error) {
	return decode[Role](domain.KindRole, data)
}

// DecodeRoles decodes a JSON array of roles, failing on the first invalid element.
func DecodeRoles(data []byte) ([]*Role, error) {
	return decodeList[Role](domain.KindRole, data)
}

func DecodeUser(data []byte) (*User, error) {
	return decode[User](domain.KindUser, data)
}

func DecodeGuild(data []byte) (*Guild, error) {
	return decode[Guild](domain.KindGuild, data)
}

// Decode turns a payload of the given kind into a validated record.
func Decode(kind domain.Kind, data []byte) (Record, error) {
	var (
		rec Record
		err error
	)
	switch kind {
	case domain.KindEmoji:
		rec, err = asRecord(DecodeEmoji(data))
	case domain.KindRole:
		rec, err = asRecord(DecodeRole(data))
	case domain.KindUser:
		rec, err = asRecord(DecodeUser(data))
	case domain.KindGuild:
		rec, err = asRecord(DecodeGuild(data))
	default:
		err = &DecodeError{Kind: kind, Err: ErrUnknownKind}
	}
	return rec, err
}

// asRecord keeps a failed typed decode from leaking a typed nil into the interface.
func asRecord[PT Record](rec PT, err error) (Record, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}
