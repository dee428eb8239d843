// Package ircutil has small pure helpers for the protocol's line oriented
// quirks: cutting long messages to fit the 512 byte line, splitting input
// into argument and text, and hostmask wildcard matching.
package ircutil

import (
	"strings"
	"unicode/utf8"
)

// lineLimit is the RFC line length minus the CRLF.
const lineLimit = 510

// MessageOverhead calculates the byte overhead of a PRIVMSG relayed to
// other clients with the given sender prefix and target. NOTICE is shorter,
// so the value is safe for both.
func MessageOverhead(nick, user, host, target string, action bool) int {
	overhead := len(":!@ PRIVMSG  :") + len(nick) + len(user) + len(host) + len(target)
	if action {
		overhead += len("\x01ACTION \x01")
	}

	return overhead
}

// CutMessage splits text into chunks that each fit within the line limit
// after the overhead, breaking on spaces. A single token too big for one
// line forces a rune-wise cut via CutMessageNoSpace.
func CutMessage(text string, overhead int) []string {
	cutLength := lineLimit - overhead

	tokens := strings.Split(text, " ")
	for _, token := range tokens {
		if len(token) >= cutLength {
			return CutMessageNoSpace(text, overhead)
		}
	}

	result := make([]string, 0, len(text)/cutLength+1)
	current := make([]byte, 0, cutLength)
	for _, token := range tokens {
		if len(current)+1+len(token) > cutLength {
			result = append(result, string(current))
			current = current[:0]
		}

		if len(current) > 0 {
			current = append(current, ' ')
		}
		current = append(current, token...)
	}

	return append(result, string(current))
}

// CutMessageNoSpace cuts on rune boundaries, never inside a multi-byte
// sequence.
func CutMessageNoSpace(text string, overhead int) []string {
	cutLength := lineLimit - overhead

	result := make([]string, 0, len(text)/cutLength+1)
	current := make([]byte, 0, cutLength)
	for _, r := range text {
		if len(current)+utf8.RuneLen(r) > cutLength {
			result = append(result, string(current))
			current = current[:0]
		}

		current = utf8.AppendRune(current, r)
	}

	return append(result, string(current))
}
