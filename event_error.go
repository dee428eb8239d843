package irc

// NewErrorEvent makes an event of kind `error` with the code as verb.
// It's absolutely trivial, but it's good to have standardized.
func NewErrorEvent(code, text string) Event {
	return NewErrorEventConversation(nil, code, text)
}

// NewErrorEventConversation is NewErrorEvent pre-routed to a conversation,
// for errors that belong to a particular channel or query.
func NewErrorEventConversation(conversation Conversation, code, text string) Event {
	event := NewEvent("error", code)
	event.Text = text

	if conversation != nil {
		event.conversations = append(event.conversations, conversation)
	}

	return event
}
