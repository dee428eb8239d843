package irc

import (
	"github.com/convoirc/irc/isupport"
	"github.com/convoirc/irc/list"
)

// A ConnState is where the client is in its connection lifecycle.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateRegistering
	StateAuthenticating
	StateReady
	StateDisconnecting
)

var connStateNames = [...]string{
	"disconnected", "connecting", "registering", "authenticating", "ready", "disconnecting",
}

func (s ConnState) String() string {
	if s < StateDisconnected || int(s) >= len(connStateNames) {
		return "unknown"
	}

	return connStateNames[s]
}

// ClientState is a snapshot of the client for the output layer, safe to
// serialize and hand off.
type ClientState struct {
	ID            string              `json:"id"`
	Nick          string              `json:"nick"`
	User          string              `json:"user"`
	Host          string              `json:"host"`
	State         string              `json:"state"`
	ISupport      *isupport.State     `json:"isupport"`
	Caps          []string            `json:"caps"`
	Conversations []ConversationState `json:"conversations"`
}

// ConversationState is a snapshot of one conversation.
type ConversationState struct {
	Kind   string      `json:"kind"`
	Name   string      `json:"name"`
	Topic  string      `json:"topic,omitempty"`
	Joined bool        `json:"joined,omitempty"`
	Users  []list.User `json:"users,omitempty"`
}
