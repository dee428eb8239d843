package irc

import (
	"strconv"
	"strings"
	"time"

	"github.com/convoirc/irc/list"
)

// packetHandlers maps each server message the client reacts to onto its
// handler. It is enumerated once at package load; anything not in the
// table falls through to the status conversation, or to handleErrorNumeric
// for error numerics.
var packetHandlers = map[MessageType]func(*Client, *Event){
	TypePing:         handlePing,
	TypePong:         handlePong,
	TypeError:        handleError,
	TypeCap:          handleCapPacket,
	TypeAuthenticate: handleAuthenticatePacket,
	TypeNick:         handleNick,
	TypeJoin:         handleJoin,
	TypePart:         handlePart,
	TypeQuit:         handleQuit,
	TypeKick:         handleKick,
	TypeTopic:        handleTopic,
	TypeMode:         handleMode,
	TypeInvite:       handleInvite,
	TypePrivmsg:      handlePrivmsg,
	TypeNotice:       handleNotice,
	TypeAccount:      handleUserPatch,
	TypeChghost:      handleUserPatch,
	TypeAway:         handleUserPatch,

	RplWelcome:      handleWelcome,
	RplISupport:     handleISupport,
	RplNoTopic:      handleChannelNumericArg1,
	RplTopic:        handleChannelNumericArg1,
	RplTopicWhoTime: handleChannelNumericArg1,
	RplNamReply:     handleNamReply,
	RplEndOfNames:   handleChannelNumericArg1,
	RplWhoReply:     handleWhoReply,
	RplEndOfWho:     handleEndOfWho,
	RplChannelModeIs: func(client *Client, event *Event) {
		// 324 has the modes at Arg(2...); reuse the MODE path.
		channel := client.Channel(event.Arg(1))
		if channel != nil {
			modeEvent := *event
			modeEvent.Args = event.Args[1:]
			modeEvent.typ = TypeMode
			client.handleInConversation(channel, &modeEvent)
			event.conversations = append(event.conversations, channel)
		}
	},

	RplWhoisUser:     handleWhoisReply,
	RplWhoisServer:   handleWhoisReply,
	RplWhoisOperator: handleWhoisReply,
	RplWhoisIdle:     handleWhoisReply,
	RplWhoisChannels: handleWhoisReply,
	RplWhoisAccount:  handleWhoisReply,
	RplWhoisSecure:   handleWhoisReply,
	RplAway:          handleAwayReply,
	RplEndOfWhois:    handleEndOfWhois,

	RplList:    handleList,
	RplListEnd: handleListEnd,

	ErrNicknameInUse:    handleNickError,
	ErrNickCollision:    handleNickError,
	ErrErroneusNickname: handleNickError,
	ErrUnavailResource:  handleNickError,

	ErrPasswdMismatch:   handleRegistrationFatal,
	ErrYoureBannedCreep: handleRegistrationFatal,

	RplLoggedIn:    handleLoggedIn,
	RplSASLSuccess: func(client *Client, event *Event) { client.handleSASLResult(true, event) },
	ErrNickLocked:  handleSASLFail,
	ErrSASLFail:    handleSASLFail,
	ErrSASLTooLong: handleSASLFail,
	ErrSASLAborted: handleSASLFail,
	RplLoggedOut:   handleSASLFail,
}

func handlePing(client *Client, event *Event) {
	if event.Text != "" {
		client.Sendf("PONG :%s", event.Text)
	} else {
		client.Sendf("PONG %s", event.Arg(0))
	}

	event.Hide()
}

func handlePong(client *Client, event *Event) {
	event.Hide()
}

// handleError covers the ERROR command servers send right before hanging
// up, e.g. on K-lines or kill.
func handleError(client *Client, event *Event) {
	client.EmitNonBlocking(NewErrorEvent("server", event.Text))
}

func handleCapPacket(client *Client, event *Event) {
	client.handleCap(event)
	event.Hide()
}

func handleAuthenticatePacket(client *Client, event *Event) {
	client.handleAuthenticate(event)
	event.Hide()
}

func handleWelcome(client *Client, event *Event) {
	client.mutex.Lock()
	client.nick = event.Arg(0)
	client.state = StateReady
	client.reconnectAttempts = 0

	// Servers that never answered CAP LS register us straight away. The
	// negotiation is over either way; a late timer must not CAP END a
	// live session.
	client.capNegotiating = false
	if client.capTimer != nil {
		client.capTimer.Stop()
		client.capTimer = nil
	}
	client.mutex.Unlock()

	// Learn own user@host; some servers also put it in the 001 text.
	client.Sendf("WHO %s", event.Arg(0))

	for _, line := range client.config.ConnectCommands {
		client.SendQueued(line)
	}

	client.autojoin()

	client.EmitNonBlocking(NewEvent("client", "ready"))
}

func handleISupport(client *Client, event *Event) {
	// First arg is our nick; "are supported by this server" is trailing.
	for _, token := range event.Args[1:] {
		if strings.HasPrefix(token, "-") {
			continue
		}

		key, value := token, ""
		if i := strings.IndexByte(token, '='); i >= 0 {
			key, value = token[:i], token[i+1:]
		}

		client.isupport.Set(key, value)
	}
}

func handleNick(client *Client, event *Event) {
	if strings.EqualFold(event.Nick, client.Nick()) {
		client.mutex.Lock()
		client.nick = event.Arg(0)
		client.mutex.Unlock()
	}

	client.handleInConversations(event.Nick, event)
}

func handleJoin(client *Client, event *Event) {
	name := event.Arg(0)

	if strings.EqualFold(event.Nick, client.Nick()) {
		channel := client.Channel(name)
		if channel == nil {
			channel = &Channel{name: name, userlist: list.New(&client.isupport)}
			if _, err := client.AddConversation(channel); err != nil {
				return
			}
		}

		client.handleInConversation(channel, event)
		return
	}

	client.handleInConversation(client.Channel(name), event)
}

func handlePart(client *Client, event *Event) {
	client.handleInConversation(client.Channel(event.Arg(0)), event)
}

func handleQuit(client *Client, event *Event) {
	client.handleInConversations(event.Nick, event)
}

func handleKick(client *Client, event *Event) {
	client.handleInConversation(client.Channel(event.Arg(0)), event)
}

func handleTopic(client *Client, event *Event) {
	client.handleInConversation(client.Channel(event.Arg(0)), event)
}

func handleMode(client *Client, event *Event) {
	target := event.Arg(0)

	if client.isupport.IsChannel(target) {
		client.handleInConversation(client.Channel(target), event)
	}
	// User mode changes just flow to the status fallback.
}

func handleInvite(client *Client, event *Event) {
	client.handleInConversation(client.status, event)
}

func handlePrivmsg(client *Client, event *Event) {
	target := event.Arg(0)

	if client.IsIgnored(event.SenderHostmask()) {
		event.Kill()
		return
	}

	if client.isupport.IsChannel(target) {
		client.handleInChannel(target, event)
		return
	}

	if !strings.EqualFold(target, client.Nick()) {
		return
	}

	client.handleInConversation(client.queryFor(event), event)
}

func handleNotice(client *Client, event *Event) {
	target := event.Arg(0)

	if client.IsIgnored(event.SenderHostmask()) {
		event.Kill()
		return
	}

	if client.isupport.IsChannel(target) {
		client.handleInChannel(target, event)
		return
	}

	// Notices never open a query; NickServ and friends stay in status.
	if query := client.Query(event.Nick); query != nil {
		client.handleInConversation(query, event)
	}
}

func handleUserPatch(client *Client, event *Event) {
	client.handleInConversations(event.Nick, event)
}

func handleNickError(client *Client, event *Event) {
	if client.State() == StateReady {
		// Post-registration collisions are the caller's problem.
		return
	}

	client.Sendf("NICK %s", client.fallbackNick())
	event.Hide()
}

// handleRegistrationFatal covers numerics that mean this connection will
// never register: wrong server password, or a ban. Reconnecting would only
// repeat the failure, so it's off until the next explicit Connect.
func handleRegistrationFatal(client *Client, event *Event) {
	if client.State() == StateReady {
		handleErrorNumeric(client, event)
		return
	}

	client.mutex.Lock()
	client.suppressReconnect = true
	client.mutex.Unlock()

	client.EmitNonBlocking(NewErrorEvent("registration", event.Text))

	if conn := client.connection(); conn != nil {
		conn.Close()
	}
}

func handleLoggedIn(client *Client, event *Event) {
	// 900 args: nick, nick!user@host, account
	if hostmask := event.Arg(1); hostmask != "" {
		if i := strings.IndexByte(hostmask, '!'); i >= 0 {
			rest := hostmask[i+1:]
			if j := strings.IndexByte(rest, '@'); j >= 0 {
				client.mutex.Lock()
				client.user = rest[:j]
				client.host = rest[j+1:]
				client.mutex.Unlock()
			}
		}
	}
}

func handleSASLFail(client *Client, event *Event) {
	if client.saslInProgress() {
		client.handleSASLResult(false, event)
		event.Hide()
	}
}

func handleChannelNumericArg1(client *Client, event *Event) {
	client.handleInConversation(client.Channel(event.Arg(1)), event)
}

func handleNamReply(client *Client, event *Event) {
	// 353 args: client, visibility flag, channel; names trailing.
	client.handleInConversation(client.Channel(event.Arg(2)), event)
}

func handleWhoReply(client *Client, event *Event) {
	// 352 args: client, channel, user, host, server, nick, flags
	nick := event.Arg(5)

	if strings.EqualFold(nick, client.Nick()) {
		client.mutex.Lock()
		client.user = event.Arg(2)
		client.host = event.Arg(3)
		client.mutex.Unlock()
	}

	target := strings.ToLower(event.Arg(1))
	client.whoRecords[target] = append(client.whoRecords[target], list.User{
		Nick: nick,
		User: event.Arg(2),
		Host: event.Arg(3),
	})

	client.handleInConversation(client.Channel(event.Arg(1)), event)
}

func handleEndOfWho(client *Client, event *Event) {
	target := strings.ToLower(event.Arg(1))
	users := client.whoRecords[target]
	delete(client.whoRecords, target)

	done := NewEvent("who", "done")
	done.Args = []string{event.Arg(1)}
	done.Data = users
	client.EmitNonBlocking(done)

	client.handleInConversation(client.Channel(event.Arg(1)), event)
}

func whoisRecord(client *Client, nick string) *Whois {
	key := strings.ToLower(nick)

	record := client.whoisRecords[key]
	if record == nil {
		record = &Whois{Nick: nick}
		client.whoisRecords[key] = record
	}

	return record
}

func handleWhoisReply(client *Client, event *Event) {
	record := whoisRecord(client, event.Arg(1))

	switch event.Type() {
	case RplWhoisUser:
		{
			record.Nick = event.Arg(1)
			record.User = event.Arg(2)
			record.Host = event.Arg(3)
			record.RealName = event.Text
		}
	case RplWhoisServer:
		{
			record.Server = event.Arg(2)
			record.ServerDescription = event.Text
		}
	case RplWhoisOperator:
		record.Operator = true
	case RplWhoisIdle:
		{
			if seconds, err := strconv.ParseInt(event.Arg(2), 10, 64); err == nil {
				record.IdleSince = time.Now().Add(-time.Duration(seconds) * time.Second)
			}
			if signon, err := strconv.ParseInt(event.Arg(3), 10, 64); err == nil {
				record.SignedOn = time.Unix(signon, 0)
			}
		}
	case RplWhoisChannels:
		record.Channels = append(record.Channels, strings.Fields(event.Text)...)
	case RplWhoisAccount:
		record.Account = event.Arg(2)
	case RplWhoisSecure:
		record.Secure = true
	}

	event.Hide()
}

// handleAwayReply fills a pending WHOIS if there is one; otherwise the 301
// is the courtesy notice you get when messaging someone who is away, and it
// belongs in their query.
func handleAwayReply(client *Client, event *Event) {
	key := strings.ToLower(event.Arg(1))

	if record, ok := client.whoisRecords[key]; ok {
		record.Away = event.Text
		event.Hide()
		return
	}

	if query := client.Query(event.Arg(1)); query != nil {
		client.handleInConversation(query, event)
	}
}

func handleEndOfWhois(client *Client, event *Event) {
	key := strings.ToLower(event.Arg(1))

	record, ok := client.whoisRecords[key]
	if !ok {
		return
	}
	delete(client.whoisRecords, key)

	done := NewEvent("whois", "done")
	done.Args = []string{record.Nick}
	done.Data = record
	client.EmitNonBlocking(done)

	event.Hide()
}

func handleList(client *Client, event *Event) {
	visible, _ := strconv.Atoi(event.Arg(2))

	client.listRecords = append(client.listRecords, ChannelListing{
		Name:    event.Arg(1),
		Visible: visible,
		Topic:   event.Text,
	})

	event.Hide()
}

func handleListEnd(client *Client, event *Event) {
	listings := client.listRecords
	client.listRecords = nil

	done := NewEvent("list", "done")
	done.Data = listings
	client.EmitNonBlocking(done)

	event.Hide()
}

// handleErrorNumeric routes recoverable error numerics to the conversation
// they concern, falling back to status. Most carry the subject in the first
// argument after the client's nick.
func handleErrorNumeric(client *Client, event *Event) {
	subject := event.Arg(1)

	if client.isupport.IsChannel(subject) {
		if channel := client.Channel(subject); channel != nil {
			client.handleInConversation(channel, event)
			return
		}
	} else if query := client.Query(subject); query != nil {
		client.handleInConversation(query, event)
		return
	}

	client.handleInConversation(client.status, event)
}

// queryFor finds or creates the query conversation for the event's sender,
// seeding the user info from a shared channel roster when possible.
// handleInChannel routes a message-ish event to a channel, tagging the
// event with the sender's prefixed nick for the output layer.
func (client *Client) handleInChannel(name string, event *Event) {
	channel := client.Channel(name)
	if channel == nil {
		return
	}

	if user, ok := channel.UserList().User(event.Nick); ok {
		event.RenderTags["prefixedNick"] = user.PrefixedNick
	}

	client.handleInConversation(channel, event)
}

func (client *Client) queryFor(event *Event) *Query {
	query := client.Query(event.Nick)
	if query != nil {
		return query
	}

	user, ok := client.FindUser(event.Nick)
	if !ok {
		user = list.User{Nick: event.Nick, User: event.User, Host: event.Host}
	}

	query = &Query{user: user}
	if _, err := client.AddConversation(query); err != nil {
		return nil
	}

	return query
}

// handleCTCP deals with the ctcp and ctcp-reply event kinds. ACTION routes
// like a PRIVMSG; queries and replies land in status unless a handler
// answered and hid them first.
func (client *Client) handleCTCP(event *Event) {
	if client.IsIgnored(event.SenderHostmask()) {
		event.Kill()
		return
	}

	if event.kind == "ctcp" && strings.EqualFold(event.verb, "ACTION") {
		target := event.Arg(0)

		if client.isupport.IsChannel(target) {
			client.handleInChannel(target, event)
		} else if strings.EqualFold(target, client.Nick()) {
			client.handleInConversation(client.queryFor(event), event)
		}

		return
	}

	if len(event.conversations) == 0 {
		client.handleInConversation(client.status, event)
	}
}

// connection grabs the current transport under the read lock.
func (client *Client) connection() *Conn {
	client.mutex.RLock()
	defer client.mutex.RUnlock()

	return client.conn
}
