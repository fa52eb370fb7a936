package record

import (
	"bytes"
	"encoding/json"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"discordcore/pkg/domain"
)

var null = []byte("null")

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), null)
}

// Required holds a field the API guarantees to send. Decode rejects records
// where it is unset, so an unset Required only exists in hand-built records.
type Required[T any] struct {
	value T
	set   bool
}

// Req returns a set Required.
func Req[T any](v T) Required[T] {
	return Required[T]{value: v, set: true}
}

func (r Required[T]) Get() (T, bool) {
	return r.value, r.set
}

func (r Required[T]) IsSet() bool {
	return r.set
}

func (r Required[T]) IsZero() bool {
	return !r.set
}

func (r Required[T]) MarshalJSON() ([]byte, error) {
	if !r.set {
		return null, nil
	}
	return json.Marshal(r.value)
}

func (r *Required[T]) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*r = Required[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Required[T]{value: v, set: true}
	return nil
}

// Optional holds a field that may be absent or null. Both decode as unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Opt returns a set Optional.
func Opt[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

func (o Optional[T]) IsZero() bool {
	return !o.set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return null, nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Optional[T]{value: v, set: true}
	return nil
}

// IDList is an optional list of identifiers such as a role whitelist.
// An absent list and an empty list are distinguishable through IsSet.
type IDList struct {
	ids []domain.Snowflake
	set bool
}

// IDs returns a set IDList.
func IDs(ids ...domain.Snowflake) IDList {
	return IDList{ids: slices.Clone(ids), set: true}
}

func (l IDList) IsSet() bool {
	return l.set
}

func (l IDList) IsZero() bool {
	return !l.set
}

func (l IDList) Len() int {
	return len(l.ids)
}

// Slice returns a copy of the identifiers in payload order.
func (l IDList) Slice() []domain.Snowflake {
	return slices.Clone(l.ids)
}

// Set returns the identifiers as a set. Absent lists yield an empty set.
func (l IDList) Set() sets.Set[domain.Snowflake] {
	return sets.New(l.ids...)
}

func (l IDList) MarshalJSON() ([]byte, error) {
	if !l.set {
		return null, nil
	}
	if l.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.ids)
}

func (l *IDList) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*l = IDList{}
		return nil
	}
	var ids []domain.Snowflake
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*l = IDList{ids: ids, set: true}
	return nil
}
