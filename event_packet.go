package irc

import (
	"errors"
	"strings"
	"time"
)

var unescapeTags = strings.NewReplacer("\\\\", "\\", "\\:", ";", "\\s", " ", "\\r", "\r", "\\n", "\n")

// ErrEmptyLine is returned by ParsePacket when given an empty line.
var ErrEmptyLine = errors.New("irc: empty line")

// ErrIncompletePacket is returned by ParsePacket when a tag or prefix
// section is not followed by anything.
var ErrIncompletePacket = errors.New("irc: incomplete packet")

// ParsePacket parses an irc line into an event of kind `packet`, `ctcp` or
// `ctcp-reply`. The command token is classified into the event's Type; an
// unrecognized command still parses fine and classifies to TypeUnknown.
func ParsePacket(line string) (Event, error) {
	event := NewEvent("packet", "")
	event.Time = time.Now()

	if len(line) == 0 {
		return event, ErrEmptyLine
	}

	// Parse IRCv3 message tags
	if line[0] == '@' {
		split := strings.SplitN(line, " ", 2)
		if len(split) < 2 {
			return event, ErrIncompletePacket
		}

		tagTokens := strings.Split(split[0][1:], ";")
		for _, token := range tagTokens {
			kv := strings.SplitN(token, "=", 2)

			if len(kv) == 2 {
				event.Tags[kv[0]] = unescapeTags.Replace(kv[1])
			} else {
				event.Tags[kv[0]] = ""
			}
		}

		line = split[1]
	}

	// Parse prefix
	if len(line) > 0 && line[0] == ':' {
		split := strings.SplitN(line, " ", 2)
		if len(split) < 2 {
			return event, ErrIncompletePacket
		}

		prefixTokens := strings.Split(split[0][1:], "!")

		event.Nick = prefixTokens[0]
		if len(prefixTokens) > 1 {
			userhost := strings.SplitN(prefixTokens[1], "@", 2)

			event.User = userhost[0]
			if len(userhost) == 2 {
				event.Host = userhost[1]
			}
		}

		line = split[1]
	}

	if len(line) == 0 {
		return event, ErrIncompletePacket
	}

	// Parse body
	split := strings.SplitN(line, " :", 2)
	tokens := strings.Split(split[0], " ")

	if len(split) == 2 {
		event.Text = split[1]
	}

	event.verb = tokens[0]
	event.Args = tokens[1:]

	// Parse CTCP
	if (strings.EqualFold(event.verb, "PRIVMSG") || strings.EqualFold(event.verb, "NOTICE")) && strings.HasPrefix(event.Text, "\x01") {
		verbtext := strings.SplitN(strings.Replace(event.Text, "\x01", "", 2), " ", 2)

		if strings.EqualFold(event.verb, "PRIVMSG") {
			event.kind = "ctcp"
		} else {
			event.kind = "ctcp-reply"
		}

		event.verb = verbtext[0]
		if len(verbtext) == 2 {
			event.Text = verbtext[1]
		} else {
			event.Text = ""
		}
	}

	if event.kind == "packet" {
		event.typ = LookupMessageType(event.verb)
	}

	event.name = event.kind + "." + strings.ToLower(event.verb)
	return event, nil
}
