package irc

import (
	"strings"
	"sync"

	"github.com/convoirc/irc/list"
)

// A Channel is a conversation with a topic, a mode set and a member roster.
// It sticks around after parting so the backlog survives; Joined tells the
// two states apart.
type Channel struct {
	backlog

	name     string
	userlist *list.List

	stateMutex sync.RWMutex
	topic      string
	modes      map[rune]string
	joined     bool
}

// Kind returns "channel"
func (channel *Channel) Kind() string {
	return "channel"
}

// Name gets the channel name
func (channel *Channel) Name() string {
	return channel.name
}

// UserList gets the channel userlist
func (channel *Channel) UserList() list.Immutable {
	return channel.userlist.Immutable()
}

// Topic gets the channel topic, or an empty string if none is known.
func (channel *Channel) Topic() string {
	channel.stateMutex.RLock()
	defer channel.stateMutex.RUnlock()

	return channel.topic
}

// Joined returns true while the local user is actually on the channel, as
// opposed to merely remembering it from before a part, kick or disconnect.
func (channel *Channel) Joined() bool {
	channel.stateMutex.RLock()
	defer channel.stateMutex.RUnlock()

	return channel.joined
}

// Modes returns a copy of the channel's mode set, mode letter to argument.
// Flag modes have an empty argument.
func (channel *Channel) Modes() map[rune]string {
	channel.stateMutex.RLock()
	defer channel.stateMutex.RUnlock()

	result := make(map[rune]string, len(channel.modes))
	for mode, arg := range channel.modes {
		result[mode] = arg
	}

	return result
}

func (channel *Channel) setTopic(topic string) {
	channel.stateMutex.Lock()
	channel.topic = topic
	channel.stateMutex.Unlock()
}

func (channel *Channel) setJoined(joined bool) {
	channel.stateMutex.Lock()
	channel.joined = joined
	channel.stateMutex.Unlock()
}

// Handle applies events routed to this channel by the client's event loop.
func (channel *Channel) Handle(event *Event, client *Client) {
	if event.kind == "ctcp" && strings.EqualFold(event.verb, "ACTION") {
		channel.push(channel.enrichSender(messageFromEvent(event, EventAction)))
		return
	}

	switch event.Type() {
	case TypePrivmsg:
		channel.push(channel.enrichSender(messageFromEvent(event, EventPrivmsg)))

	case TypeNotice:
		channel.push(channel.enrichSender(messageFromEvent(event, EventNotice)))

	case TypeJoin:
		{
			// Support extended-join
			account := ""
			if accountArg := event.Arg(1); accountArg != "" && accountArg != "*" {
				account = accountArg
			}

			channel.userlist.Insert(list.User{
				Nick:    event.Nick,
				User:    event.User,
				Host:    event.Host,
				Account: account,
			})

			if strings.EqualFold(event.Nick, client.Nick()) {
				channel.setJoined(true)
			}

			channel.push(messageFromEvent(event, EventJoin))
		}

	case TypePart:
		{
			channel.userlist.Remove(event.Nick)

			if strings.EqualFold(event.Nick, client.Nick()) {
				channel.setJoined(false)
				channel.userlist.Clear()
			}

			channel.push(messageFromEvent(event, EventPart))
		}

	case TypeQuit:
		{
			channel.userlist.Remove(event.Nick)
			channel.push(messageFromEvent(event, EventQuit))
		}

	case TypeKick:
		{
			kicked := event.Arg(1)
			channel.userlist.Remove(kicked)

			if strings.EqualFold(kicked, client.Nick()) {
				channel.setJoined(false)
				channel.userlist.Clear()
			}

			channel.push(messageFromEvent(event, EventKick))
		}

	case TypeNick:
		{
			channel.userlist.Rename(event.Nick, event.Arg(0))
			channel.push(messageFromEvent(event, EventNick))
		}

	case TypeAccount:
		{
			newAccount := event.Arg(0)

			if newAccount != "*" && newAccount != "" {
				channel.userlist.Patch(event.Nick, list.UserPatch{Account: newAccount})
			} else {
				channel.userlist.Patch(event.Nick, list.UserPatch{ClearAccount: true})
			}
		}

	case TypeChghost:
		{
			newUser := event.Arg(0)
			newHost := event.Arg(1)

			channel.userlist.Patch(event.Nick, list.UserPatch{User: newUser, Host: newHost})
		}

	case TypeAway:
		{
			if event.Text != "" {
				channel.userlist.Patch(event.Nick, list.UserPatch{Away: event.Text})
			} else {
				channel.userlist.Patch(event.Nick, list.UserPatch{ClearAway: true})
			}
		}

	case TypeTopic:
		{
			channel.setTopic(event.Text)
			channel.push(messageFromEvent(event, EventTopic))
		}

	case RplTopic:
		channel.setTopic(event.Text)

	case RplNoTopic:
		channel.setTopic("")

	case RplNamReply:
		{
			channel.userlist.SetAutoSort(false)
			tokens := strings.Split(event.Text, " ")
			for _, token := range tokens {
				channel.userlist.InsertFromNamesToken(token)
			}
		}

	case RplEndOfNames:
		channel.userlist.SetAutoSort(true)

	case RplWhoReply:
		{
			// Args: client channel user host server nick flags :hops real
			nick := event.Arg(5)
			flags := event.Arg(6)

			patch := list.UserPatch{User: event.Arg(2), Host: event.Arg(3)}
			if strings.ContainsRune(flags, 'G') {
				patch.Away = "Away"
			} else {
				patch.ClearAway = true
			}
			if strings.ContainsRune(flags, '*') {
				patch.Oper = true
			} else {
				patch.ClearOper = true
			}

			channel.userlist.Patch(nick, patch)
		}

	case TypeMode:
		channel.handleMode(event, client)

	default:
		if event.Type().IsError() {
			channel.push(messageFromEvent(event, EventRaw))
		}
	}
}

func (channel *Channel) handleMode(event *Event, client *Client) {
	isupport := client.ISupport()
	plus := false
	argIndex := 2

	for _, ch := range event.Arg(1) {
		if ch == '+' {
			plus = true
			continue
		}
		if ch == '-' {
			plus = false
			continue
		}

		arg := ""
		if isupport.ModeTakesArgument(ch, plus) {
			arg = event.Arg(argIndex)
			argIndex++
		}

		if isupport.IsPermissionMode(ch) {
			if plus {
				channel.userlist.AddMode(arg, ch)
			} else {
				channel.userlist.RemoveMode(arg, ch)
			}
		} else {
			channel.stateMutex.Lock()
			if channel.modes == nil {
				channel.modes = make(map[rune]string, 8)
			}
			if plus {
				channel.modes[ch] = arg
			} else {
				delete(channel.modes, ch)
			}
			channel.stateMutex.Unlock()
		}
	}
}

// enrichSender fills in the sender's roster data, so the stored message
// knows about prefixes and accounts the bare prefix doesn't carry.
func (channel *Channel) enrichSender(msg Message) Message {
	if msg.Sender == nil {
		return msg
	}

	if user, ok := channel.userlist.User(msg.Sender.Nick); ok {
		msg.Sender = &user
	}

	return msg
}

// State makes a snapshot of the channel for the output layer.
func (channel *Channel) State() ConversationState {
	channel.stateMutex.RLock()
	defer channel.stateMutex.RUnlock()

	return ConversationState{
		Kind:   "channel",
		Name:   channel.name,
		Topic:  channel.topic,
		Joined: channel.joined,
		Users:  channel.userlist.Users(),
	}
}
