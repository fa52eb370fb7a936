package entity

import (
	"context"
	"fmt"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

// Role is a guild role.
type Role struct {
	resolver Resolver
	rec      *record.Role
	guildID  domain.Snowflake
}

func NewRole(rec *record.Role, guildID domain.Snowflake, r Resolver) *Role {
	return &Role{resolver: r, rec: rec, guildID: guildID}
}

func (r *Role) Kind() domain.Kind {
	return domain.KindRole
}

func (r *Role) ID() (domain.Snowflake, error) {
	id, ok := r.rec.ID.Get()
	if !ok {
		return 0, &MissingIdentifierError{Kind: domain.KindRole}
	}
	return id, nil
}

func (r *Role) Name() string {
	return required(domain.KindRole, "name", r.rec.Name)
}

// Color is the RGB color as an integer; zero means no color.
func (r *Role) Color() int {
	return required(domain.KindRole, "color", r.rec.Color)
}

// Hoisted reports whether members are listed separately in the sidebar.
func (r *Role) Hoisted() bool {
	return required(domain.KindRole, "hoist", r.rec.Hoist)
}

func (r *Role) Position() int {
	return required(domain.KindRole, "position", r.rec.Position)
}

func (r *Role) Permissions() record.Permissions {
	return required(domain.KindRole, "permissions", r.rec.Permissions)
}

func (r *Role) Managed() bool {
	return required(domain.KindRole, "managed", r.rec.Managed)
}

func (r *Role) Mentionable() bool {
	return required(domain.KindRole, "mentionable", r.rec.Mentionable)
}

// Everyone reports whether this is the guild's @everyone role, which shares
// the guild's ID.
func (r *Role) Everyone() bool {
	id, ok := r.rec.ID.Get()
	return ok && id == r.guildID
}

func (r *Role) GuildID() domain.Snowflake {
	return r.guildID
}

func (r *Role) Guild(ctx context.Context) (*Guild, error) {
	return ResolveOne[*Guild](ctx, r.resolver, domain.KindGuild, r.guildID, 0)
}

func (r *Role) Mention() string {
	return fmt.Sprintf("<@&%s>", required(domain.KindRole, "id", r.rec.ID))
}
