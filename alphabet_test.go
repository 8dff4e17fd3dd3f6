package lttproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlphabetInternIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	id1 := a.Intern("<n>")
	id2 := a.Intern("<n>")
	assert.Equal(id1, id2)
	assert.NotEqual(SymbolID(0), id1)
}

func TestAlphabetLookupFallsBackToRune(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	assert.Equal("x", a.Lookup(SymbolID('x')))
}

func TestAlphabetIsTag(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	assert.True(a.IsTag("<n>"))
	assert.False(a.IsTag("n"))
	assert.False(a.IsTag("<"))
}

func TestAlphabetIsTagID(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	tagID := a.Intern("<vblex>")
	letterID := a.Intern("z")
	assert.True(a.IsTagID(tagID))
	assert.False(a.IsTagID(letterID))
	assert.False(a.IsTagID(SymbolID('q'))) // never interned
}

func TestAlphabetTagsWithPrefix(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	a.Intern("<CompoundR>")
	a.Intern("<CompoundOnlyL>")
	a.Intern("<n>")
	ids := a.TagsWithPrefix("<Compound")
	assert.Len(ids, 2)
}

func TestAlphabetSetSymbolBlanksOutControlTag(t *testing.T) {
	assert := assert.New(t)
	a := NewAlphabet()
	id := a.Intern("<CompoundR>")
	a.setSymbol(id, "")
	assert.Equal("", a.Lookup(id))
}

func TestEncodeDecodePairRoundTrips(t *testing.T) {
	assert := assert.New(t)
	up, lo := SymbolID(42), SymbolID(7)
	packed := EncodePair(up, lo)
	gotUp, gotLo := DecodePair(packed)
	assert.Equal(up, gotUp)
	assert.Equal(lo, gotLo)
}

func TestEncodeDecodePairNegativeLow(t *testing.T) {
	assert := assert.New(t)
	up, lo := SymbolID(1), SymbolID(-1)
	packed := EncodePair(up, lo)
	gotUp, gotLo := DecodePair(packed)
	assert.Equal(up, gotUp)
	assert.Equal(lo, gotLo)
}
