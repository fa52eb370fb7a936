package domain

// Kind names the type of entity an identifier refers to.
type Kind string

const (
	KindGuild Kind = "guild"
	KindRole  Kind = "role"
	KindUser  Kind = "user"
	KindEmoji Kind = "emoji"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindGuild, KindRole, KindUser, KindEmoji}

func (k Kind) Valid() bool {
	switch k {
	case KindGuild, KindRole, KindUser, KindEmoji:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}
