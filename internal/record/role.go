package record

import (
	"encoding/json"
	"strconv"

	"discordcore/pkg/domain"
)

// Permissions is a role's permission bitset. Older API versions send it as a
// number, newer ones as a decimal string; both decode.
type Permissions uint64

func (p Permissions) Has(bits Permissions) bool {
	return p&bits == bits
}

// String returns the decimal form the API uses.
func (p Permissions) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

func (p Permissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Permissions) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := strconv.ParseUint(raw.String(), 10, 64)
	if err != nil {
		return err
	}
	*p = Permissions(v)
	return nil
}

// Role is a guild role object. Role payloads do not name their guild.
type Role struct {
	ID          Required[domain.Snowflake] `json:"id,omitzero"`
	Name        Required[string]           `json:"name,omitzero"`
	Color       Required[int]              `json:"color,omitzero"`
	Hoist       Required[bool]             `json:"hoist,omitzero"`
	Position    Required[int]              `json:"position,omitzero"`
	Permissions Required[Permissions]      `json:"permissions,omitzero"`
	Managed     Required[bool]             `json:"managed,omitzero"`
	Mentionable Required[bool]             `json:"mentionable,omitzero"`
}

func (*Role) Kind() domain.Kind {
	return domain.KindRole
}

func (r *Role) Identifier() (domain.Snowflake, bool) {
	return r.ID.Get()
}

func (r *Role) Validate() error {
	return checkRequired(domain.KindRole,
		field{"id", r.ID},
		field{"name", r.Name},
		field{"color", r.Color},
		field{"hoist", r.Hoist},
		field{"position", r.Position},
		field{"permissions", r.Permissions},
		field{"managed", r.Managed},
		field{"mentionable", r.Mentionable},
	)
}
