package irctest

import (
	"sync"

	"github.com/convoirc/irc"
)

// An EventLog records every event a client emits, for asserting on what
// came through after the fact.
type EventLog struct {
	mutex  sync.Mutex
	events []*irc.Event
}

// Handler is the irc.Handler to register on the client under test.
func (l *EventLog) Handler(event *irc.Event, _ *irc.Client) {
	l.mutex.Lock()
	l.events = append(l.events, event)
	l.mutex.Unlock()
}

// First returns the earliest recorded event of the kind and verb, or nil.
func (l *EventLog) First(kind, verb string) *irc.Event {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for _, e := range l.events {
		if e.Kind() == kind && e.Verb() == verb {
			return e
		}
	}

	return nil
}

// Last returns the latest recorded event of the kind and verb, or nil.
func (l *EventLog) Last(kind, verb string) *irc.Event {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind() == kind && l.events[i].Verb() == verb {
			return l.events[i]
		}
	}

	return nil
}
