package record

import "discordcore/pkg/domain"

// User is a Discord user object.
type User struct {
	ID            Required[domain.Snowflake] `json:"id,omitzero"`
	Username      Required[string]           `json:"username,omitzero"`
	Discriminator Required[string]           `json:"discriminator,omitzero"`
	Avatar        Optional[string]           `json:"avatar,omitzero"`
	Bot           Optional[bool]             `json:"bot,omitzero"`
}

func (*User) Kind() domain.Kind {
	return domain.KindUser
}

func (u *User) Identifier() (domain.Snowflake, bool) {
	return u.ID.Get()
}

func (u *User) Validate() error {
	return checkRequired(domain.KindUser,
		field{"id", u.ID},
		field{"username", u.Username},
		field{"discriminator", u.Discriminator},
	)
}
