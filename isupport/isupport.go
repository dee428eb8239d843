// Package isupport keeps the server feature map built from 005 numerics and
// makes sense of the PREFIX and CHANMODES tables in it.
package isupport

import (
	"strconv"
	"strings"
	"sync"
)

// ISupport is a data structure containing server instructions about
// supported modes, lengths, prefixes, and so on. It's thread-safe through a
// reader/writer lock, so the locks will only block in the short duration
// post-registration when the 005s come in.
type ISupport struct {
	lock  sync.RWMutex
	state State
}

// Get gets an isupport key. This is unprocessed data, and a helper should
// be used if available.
func (isupport *ISupport) Get(key string) (value string, ok bool) {
	isupport.lock.RLock()
	value, ok = isupport.state.Raw[strings.ToUpper(key)]
	isupport.lock.RUnlock()
	return
}

// Number gets a key and converts it to a number.
func (isupport *ISupport) Number(key string) (value int, ok bool) {
	strValue, ok := isupport.Get(key)
	if !ok {
		return 0, false
	}

	value, err := strconv.Atoi(strValue)
	if err != nil {
		return value, false
	}

	return value, true
}

// IsModeHigher returns true if `current` is a higher membership mode than
// `other`, according to the PREFIX order.
func (isupport *ISupport) IsModeHigher(current rune, other rune) bool {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	if current == other {
		return false
	}
	if current == 0 {
		return false
	}
	if other == 0 {
		return true
	}

	for _, mode := range isupport.state.ModeOrder {
		if mode == current {
			return true
		} else if mode == other {
			return false
		}
	}

	return false
}

// SortModes returns the modes in rank order. Any unknown modes are omitted.
func (isupport *ISupport) SortModes(modes string) string {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	result := ""
	for _, ch := range isupport.state.ModeOrder {
		if strings.ContainsRune(modes, ch) {
			result += string(ch)
		}
	}

	return result
}

// SortPrefixes returns the prefixes in rank order. Any unknown prefixes are
// omitted.
func (isupport *ISupport) SortPrefixes(prefixes string) string {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	result := ""
	for _, ch := range isupport.state.PrefixOrder {
		if strings.ContainsRune(prefixes, ch) {
			result += string(ch)
		}
	}

	return result
}

// Mode gets the membership mode for a prefix symbol, e.g. '@' -> 'o'.
func (isupport *ISupport) Mode(prefix rune) rune {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	return isupport.state.Prefixes[prefix]
}

// Prefix gets the prefix symbol for a membership mode, e.g. 'o' -> '@'.
// It's a bit slower than the other way around, but far less frequently used.
func (isupport *ISupport) Prefix(mode rune) rune {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	for prefix, mappedMode := range isupport.state.Prefixes {
		if mappedMode == mode {
			return prefix
		}
	}

	return rune(0)
}

// Prefixes gets the prefix symbols for a mode set, in the mode set's order,
// skipping any invalid modes.
func (isupport *ISupport) Prefixes(modes string) string {
	result := ""

	for _, mode := range modes {
		prefix := isupport.Prefix(mode)
		if prefix != 0 {
			result += string(prefix)
		}
	}

	return result
}

// IsChannel returns whether the target name is a channel per CHANTYPES.
func (isupport *ISupport) IsChannel(targetName string) bool {
	if targetName == "" {
		return false
	}

	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	chantypes := isupport.state.Raw["CHANTYPES"]
	if chantypes == "" {
		// Off-brand servers that skip CHANTYPES still have # channels.
		chantypes = "#&"
	}

	return strings.Contains(chantypes, string(targetName[0]))
}

// IsPermissionMode returns whether the flag is a membership mode from the
// PREFIX table.
func (isupport *ISupport) IsPermissionMode(flag rune) bool {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	return strings.ContainsRune(isupport.state.ModeOrder, flag)
}

// ModeTakesArgument returns true if the mode takes an argument when set
// (plus) or unset.
func (isupport *ISupport) ModeTakesArgument(flag rune, plus bool) bool {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	// Membership modes always take an argument.
	if strings.ContainsRune(isupport.state.ModeOrder, flag) {
		return true
	}

	if len(isupport.state.ChannelModes) < 3 {
		return false
	}

	// CHANMODES categories A and B always take an argument.
	if strings.ContainsRune(isupport.state.ChannelModes[0], flag) || strings.ContainsRune(isupport.state.ChannelModes[1], flag) {
		return true
	}

	// Category C only takes one when added.
	if plus && strings.ContainsRune(isupport.state.ChannelModes[2], flag) {
		return true
	}

	// Category D and anything undeclared never does.
	return false
}

// ChannelModeType returns a number from 0 to 3 based on what block of the
// CHANMODES variable the mode fits into, or -1 if it's not declared at all.
// Membership modes count as block 0, since they add and remove the same way.
func (isupport *ISupport) ChannelModeType(mode rune) int {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	if strings.ContainsRune(isupport.state.ModeOrder, mode) {
		return 0
	}

	for i, block := range isupport.state.ChannelModes {
		if strings.ContainsRune(block, mode) {
			return i
		}
	}

	return -1
}

// Set sets an isupport key, and unpacks the PREFIX and CHANMODES tables
// when those keys come in.
func (isupport *ISupport) Set(key, value string) {
	key = strings.ToUpper(key)

	isupport.lock.Lock()

	if isupport.state.Raw == nil {
		isupport.state.Raw = make(map[string]string, 32)
	}

	isupport.state.Raw[key] = value

	switch key {
	case "PREFIX": // PREFIX=(ov)@+
		{
			if len(value) > 2 && value[0] == '(' {
				split := strings.SplitN(value[1:], ")", 2)
				if len(split) == 2 && len(split[0]) == len(split[1]) {
					isupport.state.ModeOrder = split[0]
					isupport.state.PrefixOrder = split[1]
					isupport.state.Prefixes = make(map[rune]rune, len(split[0]))
					for i, ch := range split[0] {
						isupport.state.Prefixes[rune(split[1][i])] = ch
					}
				}
			}
		}
	case "CHANMODES": // CHANMODES=eIbq,k,flj,CFLNPQcgimnprstz
		{
			isupport.state.ChannelModes = strings.Split(value, ",")
		}
	}

	isupport.lock.Unlock()
}

// State gets a copy of the isupport state.
func (isupport *ISupport) State() *State {
	isupport.lock.RLock()
	defer isupport.lock.RUnlock()

	return isupport.state.Copy()
}

// Reset clears everything, readying the struct for the next connection's
// 005 burst.
func (isupport *ISupport) Reset() {
	isupport.lock.Lock()
	isupport.state.PrefixOrder = ""
	isupport.state.ModeOrder = ""
	isupport.state.Prefixes = nil
	isupport.state.ChannelModes = nil

	for key := range isupport.state.Raw {
		delete(isupport.state.Raw, key)
	}
	isupport.lock.Unlock()
}
