package irc

import (
	"context"
	"encoding/json"
	"time"
)

// An Event is any thing that passes through the client's event loop, whether
// it came off the wire, from user input, or from the client itself. It's not
// thread safe, because it's processed in sequence and should not be used off
// the goroutine that processed it.
type Event struct {
	kind string
	verb string
	name string
	typ  MessageType

	Time time.Time
	Nick string
	User string
	Host string
	Args []string
	Text string
	Tags map[string]string

	// RenderTags are hints for the output layer, like the prefixed nick of
	// the sender on the channel the event landed in.
	RenderTags map[string]string

	// Data carries a structured payload for the few events that have one,
	// like the finished record on `whois.done` or the offered certificate
	// on `client.trust_decision`.
	Data interface{}

	ctx    context.Context
	cancel context.CancelFunc
	killed bool
	hidden bool

	conversations []Conversation
}

// NewEvent makes a new event with Kind, Verb and Time set and Args and Tags
// initialized.
func NewEvent(kind, verb string) Event {
	return Event{
		kind: kind,
		verb: verb,
		name: kind + "." + verb,

		Time:       time.Now(),
		Args:       make([]string, 0, 4),
		Tags:       make(map[string]string),
		RenderTags: make(map[string]string),
	}
}

// Kind gets the event's kind: `packet`, `ctcp`, `ctcp-reply`, `input`,
// `client`, `hook` or `error`.
func (event *Event) Kind() string {
	return event.kind
}

// Verb gets the event's verb, e.g. the lower-cased command of a packet.
func (event *Event) Verb() string {
	return event.verb
}

// Name gets the event name, which is Kind and Verb separated by a dot.
func (event *Event) Name() string {
	return event.name
}

// Type gets the classified message type for packet events; it is
// TypeUnknown for anything that didn't come off the wire.
func (event *Event) Type() MessageType {
	return event.typ
}

// IsEither returns true if the event has the kind and one of the verbs.
func (event *Event) IsEither(kind string, verbs ...string) bool {
	if event.kind != kind {
		return false
	}

	for i := range verbs {
		if event.verb == verbs[i] {
			return true
		}
	}

	return false
}

// Arg gets the nth argument, or an empty string if there are fewer arguments
// than that. IRC packets vary in shape and this spares the handlers a lot of
// bounds checking.
func (event *Event) Arg(index int) string {
	if index < 0 || index >= len(event.Args) {
		return ""
	}

	return event.Args[index]
}

// SenderHostmask assembles nick!user@host for prefix-carrying packets.
func (event *Event) SenderHostmask() string {
	if event.User == "" || event.Host == "" {
		return event.Nick
	}

	return event.Nick + "!" + event.User + "@" + event.Host
}

// Context gets the event's context if it's part of the loop, or
// `context.Background` otherwise. Client.Emit sets this on its copy and
// returns it.
func (event *Event) Context() context.Context {
	if event.ctx == nil {
		return context.Background()
	}

	return event.ctx
}

// Kill stops propagation of the event. The context will be cancelled once
// the current event handler returns.
func (event *Event) Kill() {
	event.killed = true
}

// Killed returns true if Kill has been called.
func (event *Event) Killed() bool {
	return event.killed
}

// Hide will not stop propagation, but it tells output handlers not to
// render it.
func (event *Event) Hide() {
	event.hidden = true
}

// Hidden returns true if Hide has been called.
func (event *Event) Hidden() bool {
	return event.hidden
}

// Conversations lists the conversations the event has been routed to so far.
func (event *Event) Conversations() []Conversation {
	return event.conversations
}

// Conversation returns the first routed conversation matching one of the
// kinds, or nil. Input handlers use it to find out where a command was typed.
func (event *Event) Conversation(kinds ...string) Conversation {
	for _, conversation := range event.conversations {
		for _, kind := range kinds {
			if conversation.Kind() == kind {
				return conversation
			}
		}
	}

	return nil
}

// ChannelConversation is a shorthand for Conversation("channel") with the
// type assertion done for you.
func (event *Event) ChannelConversation() *Channel {
	conversation := event.Conversation("channel")
	if conversation == nil {
		return nil
	}

	return conversation.(*Channel)
}

// QueryConversation is a shorthand for Conversation("query") with the type
// assertion done for you.
func (event *Event) QueryConversation() *Query {
	conversation := event.Conversation("query")
	if conversation == nil {
		return nil
	}

	return conversation.(*Query)
}

// MarshalJSON makes a JSON object from the event.
func (event *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"kind":   event.kind,
		"verb":   event.verb,
		"time":   event.Time,
		"nick":   event.Nick,
		"args":   event.Args,
		"text":   event.Text,
		"tags":   event.Tags,
		"killed": event.killed,
		"hidden": event.hidden,
	})
}
