package list

// A Privilege is a channel privilege tier. The zero value is an ordinary
// member; higher values outrank lower ones.
type Privilege int

// Privilege tiers, lowest to highest. IRCOp outranks everything because a
// server operator shows up with it regardless of channel status.
const (
	Normal Privilege = iota
	Voice
	HalfOp
	Operator
	Admin
	Owner
	IRCOp
)

var privilegeNames = [...]string{"normal", "voice", "halfop", "operator", "admin", "owner", "ircop"}

func (p Privilege) String() string {
	if p < Normal || int(p) >= len(privilegeNames) {
		return "unknown"
	}

	return privilegeNames[p]
}

// PrivilegeForMode maps a channel membership mode character to its tier.
// The letters are stable across servers even though the prefix symbols
// (@, %, + and friends) are not.
func PrivilegeForMode(mode rune) Privilege {
	switch mode {
	case 'q':
		return Owner
	case 'a':
		return Admin
	case 'o':
		return Operator
	case 'h':
		return HalfOp
	case 'v':
		return Voice
	}

	return Normal
}

// ModeForPrivilege is the inverse of PrivilegeForMode. Normal and IRCOp have
// no membership mode and yield 0.
func ModeForPrivilege(p Privilege) rune {
	switch p {
	case Owner:
		return 'q'
	case Admin:
		return 'a'
	case Operator:
		return 'o'
	case HalfOp:
		return 'h'
	case Voice:
		return 'v'
	}

	return 0
}

// A User represents a member of a channel userlist.
type User struct {
	Nick         string `json:"nick"`
	User         string `json:"user,omitempty"`
	Host         string `json:"host,omitempty"`
	Account      string `json:"account,omitempty"`
	Away         string `json:"away,omitempty"`
	Oper         bool   `json:"oper,omitempty"`
	Modes        string `json:"modes"`
	Prefixes     string `json:"prefixes"`
	PrefixedNick string `json:"prefixedNick"`
}

// UserPatch is used in List.Patch to apply changes to a user
type UserPatch struct {
	User         string
	Host         string
	Account      string
	ClearAccount bool
	Away         string
	ClearAway    bool
	Oper         bool
	ClearOper    bool
}

// IsAway returns true if the user has an away message set.
func (user *User) IsAway() bool {
	return user.Away != ""
}

// Hostmask assembles the nick!user@host form used for bans and ignores.
func (user *User) Hostmask() string {
	return user.Nick + "!" + user.User + "@" + user.Host
}

// HighestMode returns the highest membership mode, relying on Modes being
// kept sorted by rank.
func (user *User) HighestMode() rune {
	if len(user.Modes) == 0 {
		return 0
	}

	return rune(user.Modes[0])
}

// Privilege returns the user's tier on this channel.
func (user *User) Privilege() Privilege {
	if user.Oper {
		return IRCOp
	}

	return PrivilegeForMode(user.HighestMode())
}

func (user *User) updatePrefixedNick() {
	if len(user.Prefixes) == 0 {
		user.PrefixedNick = user.Nick
		return
	}

	user.PrefixedNick = string(user.Prefixes[0]) + user.Nick
}
