package ircutil

import "strings"

// MatchMask reports whether a hostmask matches an IRC wildcard pattern,
// where `*` matches any run of characters and `?` exactly one. Matching is
// case-insensitive like everything else nick-shaped.
func MatchMask(pattern, hostmask string) bool {
	return matchFold(strings.ToLower(pattern), strings.ToLower(hostmask))
}

func matchFold(pattern, s string) bool {
	// Iterative glob match with single-star backtracking.
	var starPattern, starInput int = -1, 0
	p, i := 0, 0

	for i < len(s) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == s[i]):
			p++
			i++
		case p < len(pattern) && pattern[p] == '*':
			starPattern = p
			starInput = i
			p++
		case starPattern >= 0:
			starInput++
			i = starInput
			p = starPattern + 1
		default:
			return false
		}
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}

	return p == len(pattern)
}
