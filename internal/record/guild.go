package record

import (
	"fmt"

	"discordcore/pkg/domain"
)

// Guild is a guild object with its embedded roles and emojis.
type Guild struct {
	ID      Required[domain.Snowflake] `json:"id,omitzero"`
	Name    Required[string]           `json:"name,omitzero"`
	Icon    Optional[string]           `json:"icon,omitzero"`
	OwnerID Required[domain.Snowflake] `json:"owner_id,omitzero"`
	Roles   Optional[[]Role]           `json:"roles,omitzero"`
	Emojis  Optional[[]Emoji]          `json:"emojis,omitzero"`
}

func (*Guild) Kind() domain.Kind {
	return domain.KindGuild
}

func (g *Guild) Identifier() (domain.Snowflake, bool) {
	return g.ID.Get()
}

func (g *Guild) Validate() error {
	err := checkRequired(domain.KindGuild,
		field{"id", g.ID},
		field{"name", g.Name},
		field{"owner_id", g.OwnerID},
	)
	if err != nil {
		return err
	}
	roles, _ := g.Roles.Get()
	for i := range roles {
		if err := roles[i].Validate(); err != nil {
			return nested(domain.KindGuild, fmt.Sprintf("roles[%d]", i), err)
		}
	}
	emojis, _ := g.Emojis.Get()
	for i := range emojis {
		if err := emojis[i].Validate(); err != nil {
			return nested(domain.KindGuild, fmt.Sprintf("emojis[%d]", i), err)
		}
	}
	return nil
}
