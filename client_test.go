package irc_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/convoirc/irc"
	"github.com/convoirc/irc/internal/irctest"
)

type stubSecrets map[string]string

func (s stubSecrets) Secret(ref string) (string, bool) {
	secret, ok := s[ref]
	return secret, ok
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second * 2)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(time.Millisecond * 10)
	}

	t.Fatalf("timed out waiting for %s", what)
}

func testConfig(interaction *irctest.Interaction) irc.Config {
	return irc.Config{
		Server:              interaction.Host(),
		Port:                interaction.Port(),
		Nick:                "Alice",
		Alternatives:        []string{"Alice2"},
		User:                "test",
		RealName:            "Test User",
		DisableFloodControl: true,
	}
}

// registrationPrelude is the traffic shared by most of the session tests: a
// server without IRCv3 caps to speak of, straight to the welcome.
func registrationPrelude(nick string) []irctest.InteractionLine {
	return []irctest.InteractionLine{
		{Client: "CAP LS 302"},
		{Client: "NICK " + nick},
		{Client: "USER test 8 * *"},
		{Server: ":test.server CAP * LS :"},
		{Client: "CAP END"},
		{Server: ":test.server 001 " + nick + " :Welcome to TestNet, " + nick},
		{Client: "WHO " + nick},
		{Server: ":test.server 005 " + nick + " PREFIX=(ov)@+ CHANTYPES=# CHANMODES=b,k,l,imnt NETWORK=TestNet :are supported by this server"},
	}
}

func TestRegistrationWithCaps(t *testing.T) {
	interaction := irctest.Interaction{
		Strict: true,
		Lines: []irctest.InteractionLine{
			{Client: "CAP LS 302"},
			{Client: "NICK Alice"},
			{Client: "USER test 8 * *"},
			{Server: ":test.server CAP * LS :multi-prefix server-time sasl"},
			{Client: "CAP REQ :server-time multi-prefix"},
			{Server: ":test.server CAP Alice ACK :server-time multi-prefix"},
			{Client: "CAP END"},
			{Server: ":test.server 001 Alice :Welcome to TestNet, Alice"},
			{Client: "WHO Alice"},
			{Server: ":test.server 005 Alice PREFIX=(ov)@+ CHANTYPES=# NETWORK=TestNet :are supported by this server"},
			{Server: "PING :sync1"},
			{Client: "PONG :sync1"},
		},
	}

	_, err := interaction.Listen()
	require.NoError(t, err)

	client := irc.New(context.Background(), testConfig(&interaction), nil)
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	waitFor(t, "registration", client.Ready)

	assert.Equal(t, "Alice", client.Nick())
	assert.True(t, client.CapEnabled("server-time"))
	assert.True(t, client.CapEnabled("multi-prefix"))
	assert.False(t, client.CapEnabled("sasl"))

	network, _ := client.ISupport().Get("NETWORK")
	assert.Equal(t, "TestNet", network)
}

func TestNickFallback(t *testing.T) {
	interaction := irctest.Interaction{
		Strict: true,
		Lines: []irctest.InteractionLine{
			{Client: "CAP LS 302"},
			{Client: "NICK Alice"},
			{Client: "USER test 8 * *"},
			{Server: ":test.server CAP * LS :"},
			{Client: "CAP END"},
			{Server: ":test.server 433 * Alice :Nickname is already in use"},
			{Client: "NICK Alice2"},
			{Server: ":test.server 433 * Alice2 :Nickname is already in use"},
			{Client: "NICK Alice1"},
			{Server: ":test.server 001 Alice1 :Welcome to TestNet, Alice1"},
			{Client: "WHO Alice1"},
		},
	}

	_, err := interaction.Listen()
	require.NoError(t, err)

	client := irc.New(context.Background(), testConfig(&interaction), nil)
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	waitFor(t, "registration", client.Ready)
	assert.Equal(t, "Alice1", client.Nick())
}

func TestSASLAuthentication(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("alice\x00alice\x00hunter2"))

	interaction := irctest.Interaction{
		Strict: true,
		Lines: []irctest.InteractionLine{
			{Client: "CAP LS 302"},
			{Client: "NICK Alice"},
			{Client: "USER test 8 * *"},
			{Server: ":test.server CAP * LS :sasl=PLAIN,EXTERNAL server-time"},
			{Client: "CAP REQ :server-time sasl"},
			{Server: ":test.server CAP Alice ACK :server-time sasl"},
			{Client: "AUTHENTICATE PLAIN"},
			{Server: "AUTHENTICATE +"},
			{Client: "AUTHENTICATE " + payload},
			{Server: ":test.server 900 Alice Alice!test@127.0.0.1 alice :You are now logged in as alice"},
			{Server: ":test.server 903 Alice :SASL authentication successful"},
			{Client: "CAP END"},
			{Server: ":test.server 001 Alice :Welcome to TestNet, Alice"},
			{Client: "WHO Alice"},
		},
	}

	_, err := interaction.Listen()
	require.NoError(t, err)

	config := testConfig(&interaction)
	config.AuthUser = "alice"
	config.AuthPasswordRef = "irc/alice"

	client := irc.New(context.Background(), config, stubSecrets{"irc/alice": "hunter2"})
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	waitFor(t, "registration", client.Ready)
	assert.True(t, client.CapEnabled("sasl"))
	assert.Equal(t, "test", client.User())
	assert.Equal(t, "127.0.0.1", client.Host())
}

func TestChannelLifecycle(t *testing.T) {
	var client *irc.Client

	lines := registrationPrelude("Alice")
	lines = append(lines,
		irctest.InteractionLine{Callback: func() error {
			client.Join("#test", "")
			return nil
		}},
		irctest.InteractionLine{Client: "JOIN #test"},
		irctest.InteractionLine{Server: ":Alice!~test@127.0.0.1 JOIN #test"},
		irctest.InteractionLine{Server: ":test.server 353 Alice = #test :@Bob +Carol Alice"},
		irctest.InteractionLine{Server: ":test.server 366 Alice #test :End of /NAMES list"},
		irctest.InteractionLine{Server: "PING :sync1"},
		irctest.InteractionLine{Client: "PONG :sync1"},
		irctest.InteractionLine{Callback: func() error {
			deadline := time.Now().Add(time.Second * 2)
			for time.Now().Before(deadline) {
				channel := client.Channel("#test")
				if channel != nil && len(channel.UserList().Users()) == 3 {
					return nil
				}

				time.Sleep(time.Millisecond * 10)
			}

			return errors.New("roster never filled")
		}},
		irctest.InteractionLine{Server: ":Bob!bob@example.com KICK #test Alice :Make room"},
		irctest.InteractionLine{Server: "PING :sync2"},
		irctest.InteractionLine{Client: "PONG :sync2"},
	)

	interaction := irctest.Interaction{Strict: true, Lines: lines}
	_, err := interaction.Listen()
	require.NoError(t, err)

	client = irc.New(context.Background(), testConfig(&interaction), nil)
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	channel := client.Channel("#test")
	require.NotNil(t, channel)

	irctest.AssertUserlist(t, channel, "@Bob", "+Carol", "Alice")

	// The kick empties the roster but keeps the conversation.
	waitFor(t, "kick processing", func() bool { return !channel.Joined() })
	assert.Len(t, channel.UserList().Users(), 0)
	assert.NotNil(t, client.Channel("#test"))
}

func TestQueryCreationAndIgnores(t *testing.T) {
	lines := registrationPrelude("Alice")
	lines = append(lines,
		irctest.InteractionLine{Server: ":Dan!dan@example.com PRIVMSG Alice :hello there"},
		irctest.InteractionLine{Server: ":Troll!troll@ignored.example.com PRIVMSG Alice :buy my coin"},
		irctest.InteractionLine{Server: ":NickServ!services@test.server NOTICE Alice :This nickname is registered"},
		irctest.InteractionLine{Server: "PING :sync1"},
		irctest.InteractionLine{Client: "PONG :sync1"},
	)

	interaction := irctest.Interaction{Strict: true, Lines: lines}
	_, err := interaction.Listen()
	require.NoError(t, err)

	config := testConfig(&interaction)
	config.Ignores = []string{"*!*@ignored.example.com"}

	client := irc.New(context.Background(), config, nil)
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	waitFor(t, "query creation", func() bool { return client.Query("Dan") != nil })

	messages := client.Query("Dan").Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "hello there", messages[0].Text)
	assert.Equal(t, irc.EventPrivmsg, messages[0].Kind)
	require.NotNil(t, messages[0].Sender)
	assert.Equal(t, "Dan", messages[0].Sender.Nick)

	// Ignored senders never open a conversation.
	assert.Nil(t, client.Query("Troll"))

	// Notices don't open queries either; they land in status.
	assert.Nil(t, client.Query("NickServ"))
}

func TestKeepsChannelStateAcrossNickChanges(t *testing.T) {
	lines := registrationPrelude("Alice")
	lines = append(lines,
		irctest.InteractionLine{Server: ":Alice!~test@127.0.0.1 JOIN #test"},
		irctest.InteractionLine{Server: ":test.server 353 Alice = #test :@Bob Alice"},
		irctest.InteractionLine{Server: ":test.server 366 Alice #test :End of /NAMES list"},
		irctest.InteractionLine{Server: ":Bob!bob@example.com NICK Bobby"},
		irctest.InteractionLine{Server: ":Alice!~test@127.0.0.1 NICK Alicia"},
		irctest.InteractionLine{Server: "PING :sync1"},
		irctest.InteractionLine{Client: "PONG :sync1"},
	)

	interaction := irctest.Interaction{Strict: true, Lines: lines}
	_, err := interaction.Listen()
	require.NoError(t, err)

	client := irc.New(context.Background(), testConfig(&interaction), nil)
	defer client.Destroy()

	require.NoError(t, client.Connect())

	interaction.Wait()
	require.Nil(t, interaction.Failure, "interaction failed: %+v", interaction.Failure)

	waitFor(t, "own nick change", func() bool { return client.Nick() == "Alicia" })

	channel := client.Channel("#test")
	require.NotNil(t, channel)

	// Renames keep privileges.
	irctest.AssertUserlist(t, channel, "@Bobby", "Alicia")

	_, ok := channel.UserList().User("Bob")
	assert.False(t, ok)
}

func TestWhoisAccumulation(t *testing.T) {
	log := irctest.EventLog{}

	client := irc.New(context.Background(), irc.Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	client.AddHandler(log.Handler)

	feed := []string{
		":test.server 311 Alice Bob ~bob example.com * :Bob Smith",
		":test.server 312 Alice Bob hub.test.server :Test hub",
		":test.server 313 Alice Bob :is an IRC operator",
		":test.server 319 Alice Bob :@#ops +#help",
		":test.server 330 Alice Bob bob_acct :is logged in as",
		":test.server 671 Alice Bob :is using a secure connection",
		":test.server 301 Alice Bob :out to lunch",
		":test.server 318 Alice Bob :End of /WHOIS list",
	}

	for _, line := range feed {
		event, err := irc.ParsePacket(line)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, client.EmitSync(ctx, event))
		cancel()
	}

	var whois *irc.Whois
	waitFor(t, "whois.done", func() bool {
		done := log.First("whois", "done")
		if done == nil {
			return false
		}

		whois = done.Data.(*irc.Whois)
		return true
	})

	assert.Equal(t, "Bob", whois.Nick)
	assert.Equal(t, "~bob", whois.User)
	assert.Equal(t, "example.com", whois.Host)
	assert.Equal(t, "Bob Smith", whois.RealName)
	assert.Equal(t, "hub.test.server", whois.Server)
	assert.Equal(t, "Test hub", whois.ServerDescription)
	assert.True(t, whois.Operator)
	assert.True(t, whois.Secure)
	assert.Equal(t, "bob_acct", whois.Account)
	assert.Equal(t, "out to lunch", whois.Away)
	assert.Equal(t, []string{"@#ops", "+#help"}, whois.Channels)
}

func TestListAccumulation(t *testing.T) {
	log := irctest.EventLog{}

	client := irc.New(context.Background(), irc.Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	client.AddHandler(log.Handler)

	feed := []string{
		":test.server 322 Alice #big 120 :The big one",
		":test.server 322 Alice #small 3 :",
		":test.server 323 Alice :End of /LIST",
	}

	for _, line := range feed {
		event, err := irc.ParsePacket(line)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, client.EmitSync(ctx, event))
		cancel()
	}

	var listings []irc.ChannelListing
	waitFor(t, "list.done", func() bool {
		done := log.First("list", "done")
		if done == nil {
			return false
		}

		listings = done.Data.([]irc.ChannelListing)
		return true
	})

	require.Len(t, listings, 2)
	assert.Equal(t, irc.ChannelListing{Name: "#big", Visible: 120, Topic: "The big one"}, listings[0])
	assert.Equal(t, irc.ChannelListing{Name: "#small", Visible: 3, Topic: ""}, listings[1])
}

func emitAll(t *testing.T, client *irc.Client, lines []string) {
	t.Helper()

	for _, line := range lines {
		event, err := irc.ParsePacket(line)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		require.NoError(t, client.EmitSync(ctx, event))
		cancel()
	}
}

func TestSelfJoinCaseFolded(t *testing.T) {
	client := irc.New(context.Background(), irc.Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	// Some servers echo the JOIN with different casing than we registered.
	emitAll(t, client, []string{
		":test.server 001 Alice :Welcome to TestNet, Alice",
		":ALICE!~test@127.0.0.1 JOIN #test",
	})

	channel := client.Channel("#test")
	require.NotNil(t, channel)
	assert.True(t, channel.Joined())
}

func TestChannelModeUpdatesRoster(t *testing.T) {
	client := irc.New(context.Background(), irc.Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	emitAll(t, client, []string{
		":test.server 001 Alice :Welcome to TestNet, Alice",
		":test.server 005 Alice PREFIX=(ov)@+ CHANTYPES=# CHANMODES=b,k,l,imnt :are supported by this server",
		":Alice!~test@127.0.0.1 JOIN #test",
		":test.server 353 Alice = #test :Alice Bob",
		":test.server 366 Alice #test :End of /NAMES list",
		":Op!op@example.com MODE #test +o Bob",
	})

	channel := client.Channel("#test")
	require.NotNil(t, channel)
	irctest.AssertUserlist(t, channel, "@Bob", "Alice")

	emitAll(t, client, []string{":Op!op@example.com MODE #test -o+k Bob hunter2"})

	irctest.AssertUserlist(t, channel, "Alice", "Bob")
	assert.Equal(t, "hunter2", channel.Modes()['k'])
}

func TestChannelIgnoresAndRenderTags(t *testing.T) {
	log := irctest.EventLog{}

	client := irc.New(context.Background(), irc.Config{
		Nick:    "Alice",
		Ignores: []string{"*!*@ignored.example.com"},
	}, nil)
	defer client.Destroy()

	client.AddHandler(log.Handler)

	emitAll(t, client, []string{
		":test.server 001 Alice :Welcome to TestNet, Alice",
		":test.server 005 Alice PREFIX=(ov)@+ CHANTYPES=# :are supported by this server",
		":Alice!~test@127.0.0.1 JOIN #test",
		":test.server 353 Alice = #test :@Dan Alice",
		":test.server 366 Alice #test :End of /NAMES list",
		":Dan!dan@example.com PRIVMSG #test :hello channel",
		":Troll!troll@ignored.example.com PRIVMSG #test :buy my coin",
	})

	channel := client.Channel("#test")
	require.NotNil(t, channel)

	// The ignored sender's line never reaches the channel backlog.
	var texts []string
	for _, message := range channel.Messages() {
		if message.Kind == irc.EventPrivmsg {
			texts = append(texts, message.Text)
		}
	}
	assert.Equal(t, []string{"hello channel"}, texts)

	// Roster data rides along for the output layer.
	privmsg := log.Last("packet", "PRIVMSG")
	require.NotNil(t, privmsg)
	assert.Equal(t, "@Dan", privmsg.RenderTags["prefixedNick"])
}

func TestScheduleCancellation(t *testing.T) {
	log := irctest.EventLog{}

	client := irc.New(context.Background(), irc.Config{Nick: "Alice"}, nil)
	defer client.Destroy()

	client.AddHandler(log.Handler)

	cancelled := client.Schedule(time.Millisecond*20, "/cancelledcmd", nil)
	cancelled()

	client.Schedule(time.Millisecond*20, "/firedcmd", nil)

	waitFor(t, "scheduled input", func() bool {
		return log.First("input", "firedcmd") != nil
	})

	assert.Nil(t, log.First("input", "cancelledcmd"))
}
