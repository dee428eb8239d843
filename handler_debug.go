package irc

import (
	"github.com/sirupsen/logrus"
)

// EnableDebug registers a global handler that logs every event passing
// through the loop at debug level. Killed events are included; whether they
// show depends on the logger's level.
func EnableDebug() {
	AddHandler(func(event *Event, client *Client) {
		logrus.WithFields(logrus.Fields{
			"client": client.ID(),
			"kind":   event.kind,
			"verb":   event.verb,
			"args":   event.Args,
			"text":   event.Text,
			"killed": event.killed,
		}).Debug("event")
	})
}
