package irc

import "sync"

// A Handler is a function hooked into the event loop. It receives every
// event that passes through a client.
type Handler func(event *Event, client *Client)

var globalHandlerMutex sync.RWMutex
var globalHandlers []Handler

// AddHandler hooks a handler into every client's event loop. It cannot be
// removed, so it's for application-lifetime wiring like an output renderer.
func AddHandler(handler Handler) {
	globalHandlerMutex.Lock()
	globalHandlers = append(globalHandlers, handler)
	globalHandlerMutex.Unlock()
}

// emit runs the client's own handlers and then the global ones, stopping
// early if a handler killed the event. The client's internal handling has
// already happened by this point.
func emit(event *Event, client *Client) {
	client.handlerMutex.RLock()
	clientHandlers := client.handlers
	client.handlerMutex.RUnlock()

	for _, handler := range clientHandlers {
		if event.killed {
			return
		}
		handler(event, client)
	}

	globalHandlerMutex.RLock()
	defer globalHandlerMutex.RUnlock()

	for _, handler := range globalHandlers {
		if event.killed {
			return
		}
		handler(event, client)
	}
}
