// Package record holds immutable snapshots of API objects as decoded from the wire.
//
// Each record field is one of Required, Optional or IDList so that "absent" is
// always an explicit state. Records are produced by Decode, which either returns
// a complete record or a *DecodeError; a partially populated record never leaves
// this package.
package record

import "discordcore/pkg/domain"

// Record is one decoded API object.
type Record interface {
	Kind() domain.Kind
	// Identifier returns the record's own ID, if the payload carries one.
	Identifier() (domain.Snowflake, bool)
	Validate() error
}
