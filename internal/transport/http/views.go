package httptransport

import (
	"cmp"
	"slices"

	"discordcore/internal/entity"
	"discordcore/pkg/domain"
)

type guildRef struct {
	ID   domain.Snowflake `json:"id"`
	Name string           `json:"name"`
}

type roleView struct {
	ID          domain.Snowflake `json:"id"`
	Name        string           `json:"name"`
	Color       int              `json:"color"`
	Position    int              `json:"position"`
	Mention     string           `json:"mention"`
	Permissions string           `json:"permissions"`
}

type userView struct {
	ID        domain.Snowflake `json:"id"`
	Username  string           `json:"username"`
	Tag       string           `json:"tag"`
	AvatarURL string           `json:"avatar_url"`
	Bot       bool             `json:"bot"`
	Mention   string           `json:"mention"`
}

type emojiView struct {
	ID            domain.Snowflake `json:"id"`
	Name          string           `json:"name"`
	Mention       string           `json:"mention"`
	ImageURL      string           `json:"image_url"`
	Animated      bool             `json:"animated"`
	Managed       bool             `json:"managed"`
	RequireColons bool             `json:"require_colons"`
	Available     *bool            `json:"available,omitempty"`
	Guild         guildRef         `json:"guild"`
	Roles         []roleView       `json:"roles"`
	Creator       *userView        `json:"creator,omitempty"`
}

type guildView struct {
	ID     domain.Snowflake `json:"id"`
	Name   string           `json:"name"`
	Owner  *userView        `json:"owner,omitempty"`
	Roles  []roleView       `json:"roles"`
	Emojis []string         `json:"emojis"`
}

func newRoleView(id domain.Snowflake, r *entity.Role) roleView {
	return roleView{
		ID:          id,
		Name:        r.Name(),
		Color:       r.Color(),
		Position:    r.Position(),
		Mention:     r.Mention(),
		Permissions: r.Permissions().String(),
	}
}

// roleViews renders roles highest position first.
func roleViews(roles []*entity.Role) []roleView {
	views := make([]roleView, 0, len(roles))
	for _, r := range roles {
		id, err := r.ID()
		if err != nil {
			continue
		}
		views = append(views, newRoleView(id, r))
	}
	slices.SortFunc(views, func(a, b roleView) int {
		if c := cmp.Compare(b.Position, a.Position); c != 0 {
			return c
		}
		return a.ID.Compare(b.ID)
	})
	return views
}

func newUserView(u *entity.User) (*userView, error) {
	id, err := u.ID()
	if err != nil {
		return nil, err
	}
	return &userView{
		ID:        id,
		Username:  u.Username(),
		Tag:       u.Tag(),
		AvatarURL: u.AvatarURL(),
		Bot:       u.Bot(),
		Mention:   u.Mention(),
	}, nil
}
