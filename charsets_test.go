package lttproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCharSetsPopulatesEscapedRunes(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	for _, r := range []rune{'[', ']', '{', '}', '^', '$', '/', '\\', '@', '<', '>'} {
		assert.True(cs.IsEscaped(r))
	}
	assert.False(cs.IsEscaped('a'))
}

func TestCharSetsAddAlphabetic(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	assert.False(cs.IsAlphabetic('é'))
	cs.AddAlphabetic([]rune{'é', 'ñ'})
	assert.True(cs.IsAlphabetic('é'))
	assert.True(cs.IsAlphabetic('ñ'))
	assert.False(cs.IsAlphabetic('z'))
}

func TestCharSetsUseDefaultIgnored(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	cs.UseDefaultIgnored()
	assert.True(cs.IsIgnored('­'))
}

func TestParseICX(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	doc := `<ignored-chars><char value="-"/><char value="."/></ignored-chars>`
	err := cs.ParseICX(strings.NewReader(doc))
	assert.Nil(err)
	assert.True(cs.IsIgnored('-'))
	assert.True(cs.IsIgnored('.'))
	assert.False(cs.IsIgnored('x'))
}

func TestParseICXMalformed(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	err := cs.ParseICX(strings.NewReader("<not-xml"))
	assert.NotNil(err)
	pe, ok := err.(*ProcessorError)
	assert.True(ok)
	assert.Equal(StreamMalformed, pe.Kind())
}

func TestParseRCX(t *testing.T) {
	assert := assert.New(t)
	cs := NewCharSets()
	doc := `<restore-chars><char value="a"><restore-char value="á"/><restore-char value="à"/></char></restore-chars>`
	err := cs.ParseRCX(strings.NewReader(doc))
	assert.Nil(err)
	assert.True(cs.RestoreChars['a']['á'])
	assert.True(cs.RestoreChars['a']['à'])
	assert.False(cs.RestoreChars['a']['z'])
}
