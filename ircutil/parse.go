package ircutil

import "strings"

// ParseArgAndText splits "#channel the rest of the line" into the first
// token and the remainder. Input commands have no standard grammar, so this
// covers the common "target then freeform text" case.
func ParseArgAndText(s string) (arg, text string) {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i+1:]
	}

	return s, ""
}
