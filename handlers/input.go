// Package handlers contains pluggable event handlers: user input commands,
// CTCP auto-replies, and a debug logger. None of them are registered by
// default; wire the ones you want with irc.AddHandler or
// Client.AddHandler.
package handlers

import (
	"strings"

	"github.com/convoirc/irc"
	"github.com/convoirc/irc/ircutil"
)

type inputFunc func(event *irc.Event, client *irc.Client)

// inputCommands maps the slash command (and its aliases) to its
// implementation. The table is enumerated once at package load.
var inputCommands = map[string]inputFunc{}

func register(handler inputFunc, names ...string) {
	for _, name := range names {
		inputCommands[name] = handler
	}
}

func init() {
	register(inputText, "text")
	register(inputMsg, "msg")
	register(inputAction, "me", "action")
	register(inputDescribe, "describe")
	register(inputNotice, "notice")
	register(inputCTCP, "ctcp")
	register(inputCTCPReply, "ctcpreply")
	register(inputPing, "ping")
	register(inputJoin, "join", "j")
	register(inputPart, "part", "leave")
	register(inputRejoin, "rejoin", "cycle")
	register(inputKick, "kick", "k")
	register(inputBan, "ban")
	register(inputUnban, "unban")
	register(inputKickBan, "kickban", "kb")
	register(inputPrivilege, "op", "deop", "voice", "devoice", "halfop", "hop", "dehalfop", "admin", "deadmin", "owner", "deowner")
	register(inputTopic, "topic")
	register(inputMode, "mode")
	register(inputM, "m")
	register(inputUmode, "umode")
	register(inputClear, "clear")
	register(inputNick, "nick")
	register(inputQuery, "query")
	register(inputClose, "close")
	register(inputWhois, "whois")
	register(inputWho, "who")
	register(inputList, "list")
	register(inputAway, "away")
	register(inputBack, "back")
	register(inputQuit, "quit")
	register(inputRaw, "raw", "quote")
}

// Input dispatches `input.*` events through the command table. Unknown
// commands become local error events rather than going to the server.
func Input(event *irc.Event, client *irc.Client) {
	if event.Kind() != "input" {
		return
	}

	command, ok := inputCommands[event.Verb()]
	if !ok {
		event.Kill()
		client.EmitNonBlocking(irc.NewErrorEvent("input", "Unknown command: /"+event.Verb()))
		return
	}

	event.Kill()
	command(event, client)
}

func usage(client *irc.Client, text string) {
	client.EmitNonBlocking(irc.NewErrorEvent("input", text))
}

// conversationName resolves the conversation the input was typed into, for
// commands that default to "here".
func conversationName(event *irc.Event, client *irc.Client, kinds ...string) (string, bool) {
	conversation := event.Conversation(kinds...)
	if conversation == nil {
		return "", false
	}

	return conversation.Name(), true
}

func inputText(event *irc.Event, client *irc.Client) {
	if event.Text == "" {
		return
	}

	name, ok := conversationName(event, client, "channel", "query")
	if !ok {
		usage(client, "There is no channel or query here to talk to")
		return
	}

	client.SendMessage(name, event.Text)
}

func inputMsg(event *irc.Event, client *irc.Client) {
	targetName, text := ircutil.ParseArgAndText(event.Text)
	if targetName == "" || text == "" {
		usage(client, "Usage: /msg <target> <text...>")
		return
	}

	client.SendMessage(targetName, text)
}

func inputAction(event *irc.Event, client *irc.Client) {
	name, ok := conversationName(event, client, "channel", "query")
	if !ok {
		usage(client, "There is no channel or query here to talk to")
		return
	}

	client.SendAction(name, event.Text)
}

func inputDescribe(event *irc.Event, client *irc.Client) {
	targetName, text := ircutil.ParseArgAndText(event.Text)
	if targetName == "" || text == "" {
		usage(client, "Usage: /describe <target> <text...>")
		return
	}

	client.SendAction(targetName, text)
}

func inputNotice(event *irc.Event, client *irc.Client) {
	targetName, text := ircutil.ParseArgAndText(event.Text)
	if targetName == "" || text == "" {
		usage(client, "Usage: /notice <target> <text...>")
		return
	}

	client.SendNotice(targetName, text)
}

func inputCTCP(event *irc.Event, client *irc.Client) {
	targetName, rest := ircutil.ParseArgAndText(event.Text)
	verb, text := ircutil.ParseArgAndText(rest)
	if targetName == "" || verb == "" {
		usage(client, "Usage: /ctcp <target> <verb> [text...]")
		return
	}

	client.SendCTCP(targetName, strings.ToUpper(verb), text)
}

func inputCTCPReply(event *irc.Event, client *irc.Client) {
	targetName, rest := ircutil.ParseArgAndText(event.Text)
	verb, text := ircutil.ParseArgAndText(rest)
	if targetName == "" || verb == "" {
		usage(client, "Usage: /ctcpreply <target> <verb> [text...]")
		return
	}

	client.SendCTCPReply(targetName, strings.ToUpper(verb), text)
}

func inputJoin(event *irc.Event, client *irc.Client) {
	name, key := ircutil.ParseArgAndText(event.Text)
	if name == "" {
		usage(client, "Usage: /join <channel> [key]")
		return
	}

	client.Join(name, key)
}

func inputPart(event *irc.Event, client *irc.Client) {
	name, message := ircutil.ParseArgAndText(event.Text)

	if name == "" || !client.ISupport().IsChannel(name) {
		// Without an explicit channel, part the one the input came from.
		here, ok := conversationName(event, client, "channel")
		if !ok {
			usage(client, "Usage: /part <channel> [message]")
			return
		}

		client.Part(here, strings.TrimSpace(event.Text))
		return
	}

	client.Part(name, message)
}

func inputRejoin(event *irc.Event, client *irc.Client) {
	name := strings.TrimSpace(event.Text)
	if name == "" {
		here, ok := conversationName(event, client, "channel")
		if !ok {
			usage(client, "Usage: /rejoin <channel>")
			return
		}
		name = here
	}

	client.Rejoin(name)
}

func inputKick(event *irc.Event, client *irc.Client) {
	nick, reason := ircutil.ParseArgAndText(event.Text)
	name, ok := conversationName(event, client, "channel")
	if nick == "" || !ok {
		usage(client, "Usage: /kick <nick> [reason] (in a channel)")
		return
	}

	client.Kick(name, nick, reason)
}

func inputBan(event *irc.Event, client *irc.Client) {
	mask := strings.TrimSpace(event.Text)
	name, ok := conversationName(event, client, "channel")
	if mask == "" || !ok {
		usage(client, "Usage: /ban <nick or mask> (in a channel)")
		return
	}

	client.Ban(name, mask)
}

func inputUnban(event *irc.Event, client *irc.Client) {
	mask := strings.TrimSpace(event.Text)
	name, ok := conversationName(event, client, "channel")
	if mask == "" || !ok {
		usage(client, "Usage: /unban <nick or mask> (in a channel)")
		return
	}

	client.Unban(name, mask)
}

func inputKickBan(event *irc.Event, client *irc.Client) {
	nick, reason := ircutil.ParseArgAndText(event.Text)
	name, ok := conversationName(event, client, "channel")
	if nick == "" || !ok {
		usage(client, "Usage: /kickban <nick> [reason] (in a channel)")
		return
	}

	client.KickBan(name, nick, reason)
}

// privilegeModes maps the convenience commands to their mode change. The
// letter is resolved against the server's PREFIX table before sending, so
// /admin on a network without +a fails locally instead of server-side.
var privilegeModes = map[string]string{
	"op":       "+o",
	"deop":     "-o",
	"voice":    "+v",
	"devoice":  "-v",
	"halfop":   "+h",
	"hop":      "+h",
	"dehalfop": "-h",
	"admin":    "+a",
	"deadmin":  "-a",
	"owner":    "+q",
	"deowner":  "-q",
}

func inputPrivilege(event *irc.Event, client *irc.Client) {
	change := privilegeModes[event.Verb()]
	nicks := strings.Fields(event.Text)
	name, ok := conversationName(event, client, "channel")
	if len(nicks) == 0 || !ok {
		usage(client, "Usage: /"+event.Verb()+" <nick...> (in a channel)")
		return
	}

	mode := rune(change[1])
	if !client.ISupport().IsPermissionMode(mode) {
		usage(client, "The server does not support mode "+string(mode))
		return
	}

	modes := string(change[0]) + strings.Repeat(string(mode), len(nicks))
	client.Mode(name, modes+" "+strings.Join(nicks, " "))
}

func inputTopic(event *irc.Event, client *irc.Client) {
	name, ok := conversationName(event, client, "channel")
	if !ok {
		usage(client, "Usage: /topic [text...] (in a channel)")
		return
	}

	if event.Text == "" {
		client.SendQueuedf("TOPIC %s", name)
		return
	}

	client.SetTopic(name, event.Text)
}

func inputMode(event *irc.Event, client *irc.Client) {
	target, modes := ircutil.ParseArgAndText(event.Text)
	if target == "" {
		usage(client, "Usage: /mode <target> <modes...>")
		return
	}

	client.Mode(target, modes)
}

func inputM(event *irc.Event, client *irc.Client) {
	name, ok := conversationName(event, client, "channel")
	if event.Text == "" || !ok {
		usage(client, "Usage: /m <modes...> (in a channel)")
		return
	}

	client.Mode(name, event.Text)
}

func inputUmode(event *irc.Event, client *irc.Client) {
	modes := strings.TrimSpace(event.Text)
	if modes == "" {
		usage(client, "Usage: /umode <modes...>")
		return
	}

	client.Mode(client.Nick(), modes)
}

func inputClear(event *irc.Event, client *irc.Client) {
	conversation := event.Conversation("channel", "query", "status")
	if conversation == nil {
		conversation = client.Conversation("status", "status")
	}

	if conversation != nil {
		conversation.ClearMessages()
	}
}

func inputNick(event *irc.Event, client *irc.Client) {
	nick := strings.TrimSpace(event.Text)
	if nick == "" {
		usage(client, "Usage: /nick <new nick>")
		return
	}

	client.ChangeNick(nick)
}

func inputQuery(event *irc.Event, client *irc.Client) {
	nick, text := ircutil.ParseArgAndText(event.Text)
	if nick == "" {
		usage(client, "Usage: /query <nick> [text...]")
		return
	}

	// Opening without a message still creates the conversation.
	client.OpenQuery(nick)

	if text != "" {
		client.SendMessage(nick, text)
	}
}

func inputClose(event *irc.Event, client *irc.Client) {
	conversation := event.Conversation("channel", "query")
	if name := strings.TrimSpace(event.Text); name != "" {
		if channel := client.Channel(name); channel != nil {
			conversation = channel
		} else if query := client.Query(name); query != nil {
			conversation = query
		}
	}

	if conversation == nil {
		usage(client, "Usage: /close [name]")
		return
	}

	if err := client.CloseConversation(conversation); err != nil {
		usage(client, err.Error())
	}
}

func inputWhois(event *irc.Event, client *irc.Client) {
	nick := strings.TrimSpace(event.Text)
	if nick == "" {
		if query := event.QueryConversation(); query != nil {
			nick = query.Name()
		} else {
			usage(client, "Usage: /whois <nick>")
			return
		}
	}

	client.Whois(nick)
}

func inputWho(event *irc.Event, client *irc.Client) {
	target := strings.TrimSpace(event.Text)
	if target == "" {
		usage(client, "Usage: /who <channel or mask>")
		return
	}

	client.Who(target)
}

func inputList(event *irc.Event, client *irc.Client) {
	client.ListChannels()
}

func inputAway(event *irc.Event, client *irc.Client) {
	client.Away(event.Text)
}

func inputBack(event *irc.Event, client *irc.Client) {
	client.Away("")
}

func inputQuit(event *irc.Event, client *irc.Client) {
	client.Quit(event.Text)
}

func inputRaw(event *irc.Event, client *irc.Client) {
	if event.Text == "" {
		usage(client, "Usage: /raw <line>")
		return
	}

	if err := client.Send(event.Text); err != nil {
		usage(client, err.Error())
	}
}

func inputPing(event *irc.Event, client *irc.Client) {
	target, _ := ircutil.ParseArgAndText(event.Text)
	if target == "" {
		usage(client, "Usage: /ping <nick>")
		return
	}

	client.SendCTCP(target, "PING", timestampToken())
}
