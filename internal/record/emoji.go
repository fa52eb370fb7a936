package record

import "discordcore/pkg/domain"

// Emoji is a guild emoji object. Unicode emoji carry no ID, and emoji payloads
// do not name their guild.
type Emoji struct {
	ID            Optional[domain.Snowflake] `json:"id,omitzero"`
	Name          Required[string]           `json:"name,omitzero"`
	Roles         IDList                     `json:"roles,omitzero"`
	User          Optional[User]             `json:"user,omitzero"`
	RequireColons Required[bool]             `json:"require_colons,omitzero"`
	Managed       Required[bool]             `json:"managed,omitzero"`
	Animated      Required[bool]             `json:"animated,omitzero"`
	Available     Optional[bool]             `json:"available,omitzero"`
}

func (*Emoji) Kind() domain.Kind {
	return domain.KindEmoji
}

func (e *Emoji) Identifier() (domain.Snowflake, bool) {
	return e.ID.Get()
}

func (e *Emoji) Validate() error {
	err := checkRequired(domain.KindEmoji,
		field{"name", e.Name},
		field{"require_colons", e.RequireColons},
		field{"managed", e.Managed},
		field{"animated", e.Animated},
	)
	if err != nil {
		return err
	}
	if u, ok := e.User.Get(); ok {
		if err := u.Validate(); err != nil {
			return nested(domain.KindEmoji, "user", err)
		}
	}
	return nil
}
