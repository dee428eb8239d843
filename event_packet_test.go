package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePacket(t *testing.T) {
	table := []struct {
		Name  string
		Line  string
		Check func(t *testing.T, event Event)
	}{
		{
			"welcome-numeric",
			":irc.example.com 001 Alice :Welcome to ExampleNet, Alice",
			func(t *testing.T, event Event) {
				assert.Equal(t, "packet", event.Kind())
				assert.Equal(t, "001", event.Verb())
				assert.Equal(t, RplWelcome, event.Type())
				assert.Equal(t, "irc.example.com", event.Nick)
				assert.Equal(t, []string{"Alice"}, event.Args)
				assert.Equal(t, "Welcome to ExampleNet, Alice", event.Text)
			},
		},
		{
			"privmsg-with-tags",
			"@time=2026-08-20T12:00:00.000Z;account=alice :Alice!alice@example.com PRIVMSG #test :Hello, World",
			func(t *testing.T, event Event) {
				assert.Equal(t, "packet.privmsg", event.Name())
				assert.Equal(t, TypePrivmsg, event.Type())
				assert.Equal(t, "Alice", event.Nick)
				assert.Equal(t, "alice", event.User)
				assert.Equal(t, "example.com", event.Host)
				assert.Equal(t, "#test", event.Arg(0))
				assert.Equal(t, "Hello, World", event.Text)
				assert.Equal(t, "2026-08-20T12:00:00.000Z", event.Tags["time"])
				assert.Equal(t, "alice", event.Tags["account"])
			},
		},
		{
			"tag-unescaping",
			"@+example=with\\sspace\\sand\\:semi :n!u@h PRIVMSG #c :hi",
			func(t *testing.T, event Event) {
				assert.Equal(t, "with space and;semi", event.Tags["+example"])
			},
		},
		{
			"ctcp-action",
			":Stranger!stranger@example.com PRIVMSG #test :\x01ACTION waves\x01",
			func(t *testing.T, event Event) {
				assert.Equal(t, "ctcp", event.Kind())
				assert.Equal(t, "ACTION", event.Verb())
				assert.Equal(t, "waves", event.Text)
				assert.Equal(t, "#test", event.Arg(0))
			},
		},
		{
			"ctcp-query-without-args",
			":Stranger!stranger@example.com PRIVMSG Alice :\x01VERSION\x01",
			func(t *testing.T, event Event) {
				assert.Equal(t, "ctcp", event.Kind())
				assert.Equal(t, "VERSION", event.Verb())
				assert.Equal(t, "", event.Text)
			},
		},
		{
			"ctcp-reply",
			":Stranger!stranger@example.com NOTICE Alice :\x01PING 123456\x01",
			func(t *testing.T, event Event) {
				assert.Equal(t, "ctcp-reply", event.Kind())
				assert.Equal(t, "PING", event.Verb())
				assert.Equal(t, "123456", event.Text)
			},
		},
		{
			"ping-without-prefix",
			"PING :sure.example.com",
			func(t *testing.T, event Event) {
				assert.Equal(t, TypePing, event.Type())
				assert.Equal(t, "", event.Nick)
				assert.Equal(t, "sure.example.com", event.Text)
			},
		},
		{
			"unknown-command",
			":irc.example.com WALLOPSFAKE a b c",
			func(t *testing.T, event Event) {
				assert.Equal(t, TypeUnknown, event.Type())
				assert.Equal(t, []string{"a", "b", "c"}, event.Args)
			},
		},
		{
			"kick-with-reason",
			":Op!op@example.com KICK #test Alice :Begone",
			func(t *testing.T, event Event) {
				assert.Equal(t, TypeKick, event.Type())
				assert.Equal(t, "#test", event.Arg(0))
				assert.Equal(t, "Alice", event.Arg(1))
				assert.Equal(t, "Begone", event.Text)
			},
		},
	}

	for _, row := range table {
		t.Run(row.Name, func(t *testing.T) {
			event, err := ParsePacket(row.Line)
			require.NoError(t, err)

			row.Check(t, event)
		})
	}
}

func TestParsePacketErrors(t *testing.T) {
	_, err := ParsePacket("")
	assert.ErrorIs(t, err, ErrEmptyLine)

	_, err = ParsePacket("@time=12:34:56")
	assert.ErrorIs(t, err, ErrIncompletePacket)

	_, err = ParsePacket(":onlyprefix")
	assert.ErrorIs(t, err, ErrIncompletePacket)
}

func TestParseInput(t *testing.T) {
	event := ParseInput("/join #test key")
	assert.Equal(t, "input.join", event.Name())
	assert.Equal(t, "#test key", event.Text)

	event = ParseInput("/QUIT")
	assert.Equal(t, "input.quit", event.Name())
	assert.Equal(t, "", event.Text)

	event = ParseInput("just some words")
	assert.Equal(t, "input.text", event.Name())
	assert.Equal(t, "just some words", event.Text)
}
