package ircutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convoirc/irc/ircutil"
)

func TestMatchMask(t *testing.T) {
	table := []struct {
		Pattern  string
		Hostmask string
		Match    bool
	}{
		{"*!*@*", "Alice!alice@example.com", true},
		{"Alice!*@*", "Alice!alice@example.com", true},
		{"alice!*@*", "Alice!alice@example.com", true},
		{"*!*@example.com", "Alice!alice@example.com", true},
		{"*!*@*.example.com", "Alice!alice@host.example.com", true},
		{"*!*@*.example.com", "Alice!alice@example.com", false},
		{"Bob!*@*", "Alice!alice@example.com", false},
		{"Alice?!*@*", "Alice1!alice@example.com", true},
		{"Alice?!*@*", "Alice!alice@example.com", false},
		{"*troll*!*@*", "BigTroll42!troll@axed.example.com", true},
		{"", "Alice!alice@example.com", false},
		{"*", "anything", true},
	}

	for _, row := range table {
		got := ircutil.MatchMask(row.Pattern, row.Hostmask)
		assert.Equal(t, row.Match, got, "pattern %q against %q", row.Pattern, row.Hostmask)
	}
}
