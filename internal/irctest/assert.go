package irctest

import (
	"strings"
	"testing"

	"github.com/convoirc/irc"
)

// AssertUserlist compares a channel's roster, in order, against the
// expected prefixed nicks.
func AssertUserlist(t *testing.T, channel *irc.Channel, expected ...string) bool {
	t.Helper()

	users := channel.UserList().Users()
	order := make([]string, 0, len(users))
	for _, user := range users {
		order = append(order, user.PrefixedNick)
	}

	got := strings.Join(order, ", ")
	want := strings.Join(expected, ", ")

	if got != want {
		t.Errorf("Userlist mismatch:\n got: %s\nwant: %s", got, want)
		return false
	}

	return true
}
