package entity

import (
	"context"

	"k8s.io/apimachinery/pkg/util/sets"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

// Guild is a Discord guild together with the roles and emojis embedded in its payload.
type Guild struct {
	resolver Resolver
	rec      *record.Guild
}

func NewGuild(rec *record.Guild, r Resolver) *Guild {
	return &Guild{resolver: r, rec: rec}
}

func (g *Guild) Kind() domain.Kind {
	return domain.KindGuild
}

func (g *Guild) ID() (domain.Snowflake, error) {
	id, ok := g.rec.ID.Get()
	if !ok {
		return 0, &MissingIdentifierError{Kind: domain.KindGuild}
	}
	return id, nil
}

func (g *Guild) Name() string {
	return required(domain.KindGuild, "name", g.rec.Name)
}

func (g *Guild) Icon() (string, bool) {
	return g.rec.Icon.Get()
}

func (g *Guild) OwnerID() domain.Snowflake {
	return required(domain.KindGuild, "owner_id", g.rec.OwnerID)
}

// Owner resolves the user owning the guild.
func (g *Guild) Owner(ctx context.Context) (*User, error) {
	return ResolveOne[*User](ctx, g.resolver, domain.KindUser, g.OwnerID(), 0)
}

// RoleIDs returns the IDs of the roles embedded in the payload.
func (g *Guild) RoleIDs() sets.Set[domain.Snowflake] {
	ids := sets.New[domain.Snowflake]()
	roles, _ := g.rec.Roles.Get()
	for i := range roles {
		if id, ok := roles[i].ID.Get(); ok {
			ids.Insert(id)
		}
	}
	return ids
}

// Roles wraps the embedded roles. No resolution takes place.
func (g *Guild) Roles() []*Role {
	roles, _ := g.rec.Roles.Get()
	guildID := required(domain.KindGuild, "id", g.rec.ID)
	out := make([]*Role, 0, len(roles))
	for i := range roles {
		out = append(out, NewRole(&roles[i], guildID, g.resolver))
	}
	return out
}

// Emojis wraps the embedded emojis. No resolution takes place.
func (g *Guild) Emojis() []*GuildEmoji {
	emojis, _ := g.rec.Emojis.Get()
	guildID := required(domain.KindGuild, "id", g.rec.ID)
	out := make([]*GuildEmoji, 0, len(emojis))
	for i := range emojis {
		out = append(out, NewGuildEmoji(&emojis[i], guildID, g.resolver))
	}
	return out
}
