package isupport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/convoirc/irc/isupport"
)

func setup() *isupport.ISupport {
	is := &isupport.ISupport{}
	is.Set("PREFIX", "(ohv)@%+")
	is.Set("CHANTYPES", "#&")
	is.Set("CHANMODES", "beI,k,l,imnpst")
	is.Set("NETWORK", "ExampleNet")
	is.Set("MODES", "4")

	return is
}

func TestGet(t *testing.T) {
	is := setup()

	network, ok := is.Get("NETWORK")
	assert.True(t, ok)
	assert.Equal(t, "ExampleNet", network)

	// Keys fold to upper case.
	network, ok = is.Get("network")
	assert.True(t, ok)
	assert.Equal(t, "ExampleNet", network)

	_, ok = is.Get("NOSUCHKEY")
	assert.False(t, ok)

	modes, ok := is.Number("MODES")
	assert.True(t, ok)
	assert.Equal(t, 4, modes)
}

func TestPrefixTable(t *testing.T) {
	is := setup()

	assert.Equal(t, 'o', is.Mode('@'))
	assert.Equal(t, 'v', is.Mode('+'))
	assert.Equal(t, rune(0), is.Mode('~'))

	assert.Equal(t, '@', is.Prefix('o'))
	assert.Equal(t, '%', is.Prefix('h'))
	assert.Equal(t, rune(0), is.Prefix('q'))

	assert.True(t, is.IsPermissionMode('o'))
	assert.True(t, is.IsPermissionMode('v'))
	assert.False(t, is.IsPermissionMode('b'))

	assert.Equal(t, "ohv", is.SortModes("vho"))
	assert.Equal(t, "@%+", is.SortPrefixes("+%@"))
	assert.Equal(t, "@+", is.Prefixes("ov"))
}

func TestIsChannel(t *testing.T) {
	is := setup()

	assert.True(t, is.IsChannel("#test"))
	assert.True(t, is.IsChannel("&local"))
	assert.False(t, is.IsChannel("Alice"))
	assert.False(t, is.IsChannel(""))
}

func TestChannelModes(t *testing.T) {
	is := setup()

	// A: list modes always take an argument.
	assert.True(t, is.ModeTakesArgument('b', true))
	assert.True(t, is.ModeTakesArgument('b', false))

	// B: key takes an argument both ways.
	assert.True(t, is.ModeTakesArgument('k', true))
	assert.True(t, is.ModeTakesArgument('k', false))

	// C: limit only takes an argument when set.
	assert.True(t, is.ModeTakesArgument('l', true))
	assert.False(t, is.ModeTakesArgument('l', false))

	// D: flags never do.
	assert.False(t, is.ModeTakesArgument('m', true))
	assert.False(t, is.ModeTakesArgument('m', false))

	// Membership modes always carry a nick.
	assert.True(t, is.ModeTakesArgument('o', true))
	assert.True(t, is.ModeTakesArgument('o', false))
}

func TestIsModeHigher(t *testing.T) {
	is := setup()

	assert.True(t, is.IsModeHigher('o', 'v'))
	assert.True(t, is.IsModeHigher('o', 0))
	assert.False(t, is.IsModeHigher('v', 'o'))
	assert.False(t, is.IsModeHigher('o', 'o'))
	assert.False(t, is.IsModeHigher(0, 'v'))
}

func TestReset(t *testing.T) {
	is := setup()
	is.Reset()

	_, ok := is.Get("NETWORK")
	assert.False(t, ok)
	assert.False(t, is.IsPermissionMode('o'))
}
