package irc

import (
	"strings"
	"sync"

	"github.com/convoirc/irc/list"
)

// A Query is a conversation with a single remote user. It has no roster.
type Query struct {
	backlog

	userMutex sync.RWMutex
	user      list.User
}

// Kind returns "query"
func (query *Query) Kind() string {
	return "query"
}

// Name gets the nick of the remote user.
func (query *Query) Name() string {
	query.userMutex.RLock()
	defer query.userMutex.RUnlock()

	return query.user.Nick
}

// User gets a copy of the remote user's identity.
func (query *Query) User() list.User {
	query.userMutex.RLock()
	defer query.userMutex.RUnlock()

	return query.user
}

// Handle applies events routed to this query by the client's event loop.
func (query *Query) Handle(event *Event, client *Client) {
	if event.kind == "ctcp" && strings.EqualFold(event.verb, "ACTION") {
		query.push(messageFromEvent(event, EventAction))
		return
	}
	if event.kind == "ctcp-reply" {
		query.push(messageFromEvent(event, EventCTCPReply))
		return
	}

	switch event.Type() {
	case TypePrivmsg:
		query.push(messageFromEvent(event, EventPrivmsg))

	case TypeNotice:
		query.push(messageFromEvent(event, EventNotice))

	case TypeNick:
		{
			query.userMutex.Lock()
			query.user.Nick = event.Arg(0)
			query.userMutex.Unlock()

			query.push(messageFromEvent(event, EventNick))
		}

	case TypeQuit:
		query.push(messageFromEvent(event, EventQuit))

	case TypeAccount:
		{
			account := ""
			if accountArg := event.Arg(0); accountArg != "" && accountArg != "*" {
				account = accountArg
			}

			query.userMutex.Lock()
			query.user.Account = account
			query.userMutex.Unlock()
		}

	case TypeChghost:
		{
			query.userMutex.Lock()
			query.user.User = event.Arg(0)
			query.user.Host = event.Arg(1)
			query.userMutex.Unlock()
		}

	case TypeAway:
		{
			query.userMutex.Lock()
			query.user.Away = event.Text
			query.userMutex.Unlock()
		}

	default:
		if event.Type().IsError() {
			query.push(messageFromEvent(event, EventRaw))
		}
	}
}

// State makes a snapshot of the query for the output layer.
func (query *Query) State() ConversationState {
	query.userMutex.RLock()
	defer query.userMutex.RUnlock()

	return ConversationState{
		Kind:  "query",
		Name:  query.user.Nick,
		Users: []list.User{query.user},
	}
}
