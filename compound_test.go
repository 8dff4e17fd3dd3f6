package lttproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildCompoundDict builds "dog" and "house" as two independently finaled
// words, each reaching its final node through an epsilon-matched "<:compound
// :R>" tag edge, so CompoundAnalyzer can chain them into "doghouse".
func buildCompoundDict() (*Root, *Alphabet, *CharSets) {
	root, alphabet, tr := newToyRoot("d@standard")

	dogEnd := word(tr, "dog", "dog")
	dogTagged := tagEdge(tr, alphabet, dogEnd, "<n>")
	dogR := tagEdge(tr, alphabet, dogTagged, "<:compound:R>")
	tr.Finals[dogR] = 0

	houseEnd := wordFrom(tr, tr.Initial, "house", "house")
	houseTagged := tagEdge(tr, alphabet, houseEnd, "<n>")
	houseR := tagEdge(tr, alphabet, houseTagged, "<:compound:R>")
	tr.Finals[houseR] = 0

	root = finalizeToyRoot(alphabet, tr)
	chars := NewCharSets()
	chars.AddAlphabetic([]rune("doghouse"))
	return root, alphabet, chars
}

func TestCompoundAnalyzerDecomposesKnownCompound(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCompoundDict()
	cfg := NewConfig()
	cfg.ShowControlSymbols = false
	c := NewCompoundAnalyzer(root, chars, cfg)

	out, ok := c.Decompose("doghouse", false)
	assert.True(ok)
	assert.Equal("dog<n>+house<n>", out)
}

func TestCompoundAnalyzerFailsOnUnknownWord(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCompoundDict()
	c := NewCompoundAnalyzer(root, chars, NewConfig())

	_, ok := c.Decompose("doghorse", false)
	assert.False(ok)
}

func TestCompoundAnalyzerRespectsMaxElements(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCompoundDict()
	cfg := NewConfig()
	cfg.CompoundMaxElements = 1
	c := NewCompoundAnalyzer(root, chars, cfg)

	_, ok := c.Decompose("doghouse", false)
	assert.False(ok)
}

func TestCompoundAnalyzerEmptyWord(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCompoundDict()
	c := NewCompoundAnalyzer(root, chars, NewConfig())

	out, ok := c.Decompose("", false)
	assert.False(ok)
	assert.Equal("", out)
}
