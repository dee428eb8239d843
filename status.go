package irc

// A Status is the conversation for everything tied to the connection rather
// than a channel or user: MOTD lines, server notices, numerics nothing else
// claimed.
type Status struct {
	backlog
}

// Kind returns "status"
func (status *Status) Kind() string {
	return "status"
}

// Name returns "status"
func (status *Status) Name() string {
	return "status"
}

// Handle applies events routed to the status conversation.
func (status *Status) Handle(event *Event, client *Client) {
	switch {
	case event.kind == "ctcp":
		status.push(messageFromEvent(event, EventCTCP))

	case event.kind == "ctcp-reply":
		status.push(messageFromEvent(event, EventCTCPReply))

	case event.Type() == TypeNotice:
		status.push(messageFromEvent(event, EventServerNotice))

	case event.Type() == TypeInvite:
		status.push(messageFromEvent(event, EventInvite))

	case event.Type().IsNumeric():
		// Keep the raw text around; the output layer decides rendering.
		status.push(messageFromEvent(event, EventRaw))
	}
}

// State makes a snapshot of the status conversation.
func (status *Status) State() ConversationState {
	return ConversationState{
		Kind: "status",
		Name: "status",
	}
}
