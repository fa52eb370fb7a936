package record

import (
	"encoding/json"
	"fmt"

	"discordcore/pkg/domain"
)

// Envelope is the cacheable unit: one record plus the identifier of the scope
// that owns it when the record does not name it (the guild of a role or emoji).
type Envelope struct {
	Kind   domain.Kind
	Parent domain.Snowflake
	Record Record
}

// Wrap builds an envelope for rec scoped to parent (zero for top-level objects).
func Wrap(rec Record, parent domain.Snowflake) Envelope {
	return Envelope{Kind: rec.Kind(), Parent: parent, Record: rec}
}

// ID returns the identifier of the wrapped record.
func (e Envelope) ID() (domain.Snowflake, bool) {
	if e.Record == nil {
		return 0, false
	}
	return e.Record.Identifier()
}

type envelopeJSON struct {
	Kind   domain.Kind      `json:"kind"`
	Parent domain.Snowflake `json:"parent,omitzero"`
	Record json.RawMessage  `json:"record"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Record == nil {
		return nil, fmt.Errorf("marshal %s envelope: nil record", e.Kind)
	}
	data, err := json.Marshal(e.Record)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{Kind: e.Kind, Parent: e.Parent, Record: data})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec, err := Decode(raw.Kind, raw.Record)
	if err != nil {
		return err
	}
	*e = Envelope{Kind: raw.Kind, Parent: raw.Parent, Record: rec}
	return nil
}
