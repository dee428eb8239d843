package list_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convoirc/irc/isupport"
	"github.com/convoirc/irc/list"
)

func testISupport() *isupport.ISupport {
	is := &isupport.ISupport{}
	is.Set("PREFIX", "(qaohv)~&@%+")
	is.Set("CHANTYPES", "#&")
	is.Set("CHANMODES", "beI,k,l,imnpst")

	return is
}

func TestInsertAndOrder(t *testing.T) {
	users := list.New(testISupport())

	assert.True(t, users.InsertFromNamesToken("@+Operator!op@example.com"))
	assert.True(t, users.InsertFromNamesToken("+Voiced"))
	assert.True(t, users.InsertFromNamesToken("Plain"))
	assert.True(t, users.InsertFromNamesToken("~Owner"))

	order := make([]string, 0, 4)
	for _, user := range users.Users() {
		order = append(order, user.PrefixedNick)
	}

	assert.Equal(t, []string{"~Owner", "@Operator", "+Voiced", "Plain"}, order)

	// user@host from userhost-in-names
	op, ok := users.User("operator")
	assert.True(t, ok)
	assert.Equal(t, "op", op.User)
	assert.Equal(t, "example.com", op.Host)
	assert.Equal(t, "Operator!op@example.com", op.Hostmask())
}

func TestInsertIdempotent(t *testing.T) {
	users := list.New(testISupport())

	assert.True(t, users.Insert(list.User{Nick: "Alice"}))
	assert.False(t, users.Insert(list.User{Nick: "Alice"}))
	assert.False(t, users.Insert(list.User{Nick: "ALICE"}))
	assert.Len(t, users.Users(), 1)
}

func TestModes(t *testing.T) {
	users := list.New(testISupport())
	users.Insert(list.User{Nick: "Alice"})

	assert.True(t, users.AddMode("Alice", 'v'))
	alice, _ := users.User("Alice")
	assert.Equal(t, "+Alice", alice.PrefixedNick)
	assert.Equal(t, list.Voice, alice.Privilege())

	assert.True(t, users.AddMode("Alice", 'o'))
	alice, _ = users.User("Alice")
	assert.Equal(t, "@Alice", alice.PrefixedNick)
	assert.Equal(t, "ov", alice.Modes)
	assert.Equal(t, list.Operator, alice.Privilege())

	assert.True(t, users.RemoveMode("Alice", 'o'))
	alice, _ = users.User("Alice")
	assert.Equal(t, "+Alice", alice.PrefixedNick)
	assert.Equal(t, list.Voice, alice.Privilege())

	// Removing a mode that isn't set changes nothing.
	assert.True(t, users.RemoveMode("Alice", 'o'))
	alice, _ = users.User("Alice")
	assert.Equal(t, "v", alice.Modes)
}

func TestRenameKeepsPrivileges(t *testing.T) {
	users := list.New(testISupport())
	users.InsertFromNamesToken("@Alice")
	users.InsertFromNamesToken("Bob")

	assert.True(t, users.Rename("Alice", "Alice2"))
	assert.False(t, users.Rename("Alice", "Alice3"))

	renamed, ok := users.User("Alice2")
	assert.True(t, ok)
	assert.Equal(t, "@Alice2", renamed.PrefixedNick)

	_, ok = users.User("Alice")
	assert.False(t, ok)

	// Case-only rename is legal on IRC.
	assert.True(t, users.Rename("bob", "BOB"))
	bob, ok := users.User("bob")
	assert.True(t, ok)
	assert.Equal(t, "BOB", bob.Nick)
}

func TestPatch(t *testing.T) {
	users := list.New(testISupport())
	users.Insert(list.User{Nick: "Alice"})

	assert.True(t, users.Patch("Alice", list.UserPatch{Account: "alice_acct"}))
	assert.True(t, users.Patch("Alice", list.UserPatch{Away: "brb"}))

	alice, _ := users.User("Alice")
	assert.Equal(t, "alice_acct", alice.Account)
	assert.True(t, alice.IsAway())

	assert.True(t, users.Patch("Alice", list.UserPatch{ClearAccount: true, ClearAway: true}))
	alice, _ = users.User("Alice")
	assert.Equal(t, "", alice.Account)
	assert.False(t, alice.IsAway())

	assert.False(t, users.Patch("Nobody", list.UserPatch{Away: "nope"}))
}

func TestRemoveAndClear(t *testing.T) {
	users := list.New(testISupport())
	users.Insert(list.User{Nick: "Alice"})
	users.Insert(list.User{Nick: "Bob"})

	assert.True(t, users.Remove("alice"))
	assert.False(t, users.Remove("alice"))
	assert.Len(t, users.Users(), 1)

	users.Clear()
	assert.Len(t, users.Users(), 0)
}

func TestPrivilegeMapping(t *testing.T) {
	assert.True(t, list.Voice < list.HalfOp)
	assert.True(t, list.HalfOp < list.Operator)
	assert.True(t, list.Operator < list.Admin)
	assert.True(t, list.Admin < list.Owner)
	assert.True(t, list.Owner < list.IRCOp)

	for _, p := range []list.Privilege{list.Voice, list.HalfOp, list.Operator, list.Admin, list.Owner} {
		assert.Equal(t, p, list.PrivilegeForMode(list.ModeForPrivilege(p)))
	}

	assert.Equal(t, list.Normal, list.PrivilegeForMode('x'))
}
