package irc

import (
	"time"

	"github.com/convoirc/irc/list"
)

// An EventType is the semantic tag on a stored Message, telling the output
// layer what happened without it having to know protocol commands.
type EventType uint8

const (
	EventPrivmsg EventType = iota
	EventAction
	EventCTCP
	EventCTCPReply
	EventNotice
	EventServerNotice
	EventNick
	EventInvite
	EventJoin
	EventPart
	EventQuit
	EventKick
	EventTopic
	EventRaw
)

var eventTypeNames = [...]string{
	"privmsg", "action", "ctcp", "ctcp-reply", "notice", "server-notice",
	"nick", "invite", "join", "part", "quit", "kick", "topic", "raw",
}

func (t EventType) String() string {
	if int(t) >= len(eventTypeNames) {
		return "unknown"
	}

	return eventTypeNames[t]
}

// A Message is one entry in a conversation's backlog. It is immutable once
// constructed; Sender is nil for server-origin messages.
type Message struct {
	Sender *list.User `json:"sender,omitempty"`
	Text   string     `json:"text"`
	Time   time.Time  `json:"time"`
	Kind   EventType  `json:"kind"`
}

// messageFromEvent builds the stored message for an inbound event. The
// sender is copied off the event prefix; roster lookups may enrich it first.
func messageFromEvent(event *Event, kind EventType) Message {
	msg := Message{
		Text: event.Text,
		Time: event.Time,
		Kind: kind,
	}

	if event.Nick != "" {
		msg.Sender = &list.User{
			Nick: event.Nick,
			User: event.User,
			Host: event.Host,
		}
	}

	return msg
}
