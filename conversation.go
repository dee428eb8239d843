package irc

import "sync"

// A Conversation is a named place messages land: a channel, a query, or the
// connection's status buffer. The client's event loop routes events into
// conversations; the output layer reads their backlog and selection state.
type Conversation interface {
	Kind() string
	Name() string
	Messages() []Message
	ClearMessages()
	Selected() bool
	SetSelected(selected bool)
	Handle(event *Event, client *Client)
	State() ConversationState
}

// backlog is the shared half of every conversation: the ordered message
// sequence and the UI selection flag. Mutation happens on the event loop,
// reads can come from anywhere, hence the lock.
type backlog struct {
	mutex    sync.RWMutex
	messages []Message
	selected bool
}

func (b *backlog) push(msg Message) {
	b.mutex.Lock()
	b.messages = append(b.messages, msg)
	b.mutex.Unlock()
}

// Messages returns a copy of the backlog in arrival order.
func (b *backlog) Messages() []Message {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	result := make([]Message, len(b.messages))
	copy(result, b.messages)

	return result
}

// ClearMessages empties the backlog.
func (b *backlog) ClearMessages() {
	b.mutex.Lock()
	b.messages = nil
	b.mutex.Unlock()
}

// Selected returns the UI selection flag.
func (b *backlog) Selected() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	return b.selected
}

// SetSelected sets the UI selection flag. The client doesn't act on it; it
// just travels with the conversation.
func (b *backlog) SetSelected(selected bool) {
	b.mutex.Lock()
	b.selected = selected
	b.mutex.Unlock()
}
