package lttproc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildBidix builds a one-entry bilingual dictionary matching spec.md's
// worked example: source "cat<n><pl>" maps to target "gato<n><pl>". The
// transducer is walked in reverse by BilingualDriver, so the matched side
// of every transition is Out (the source-language text) and the emitted
// side is In (the target-language text) — the same convention
// generation.go relies on.
func buildBidix() (*Root, *Alphabet, *CharSets) {
	root, alphabet, tr := newToyRoot("bi@standard")

	// In="gato" (target, emitted), Out="cat" (source, matched); the extra
	// target letter "o" rides an epsilon-matched tail transition.
	afterLetters := word(tr, "gato", "cat")

	n := alphabet.Intern("<n>")
	afterN := tr.addNode()
	tr.addTransition(afterLetters, Transition{In: n, Out: n, Target: afterN})

	pl := alphabet.Intern("<pl>")
	afterPl := tr.addNode()
	tr.addTransition(afterN, Transition{In: pl, Out: pl, Target: afterPl})

	tr.Finals[afterPl] = 0

	root = finalizeToyRoot(alphabet, tr)
	chars := NewCharSets()
	chars.AddAlphabetic([]rune("catgato"))
	return root, alphabet, chars
}

func TestBilingualRendersTargetWithTagsPreserved(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildBidix()
	d := NewBilingualDriver(root, chars, NewConfig())
	rd := NewReader(strings.NewReader("^cat<n><pl>$"), root.Alphabet, chars)

	var w bytes.Buffer
	more, err := d.Bilingual(rd, &w)
	assert.Nil(err)
	assert.True(more)
	assert.Equal("^cat<n><pl>/gato<n><pl>$", w.String())
}

func TestBiltransWithQueueSingleWord(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildBidix()
	d := NewBilingualDriver(root, chars, NewConfig())

	out, queueLen, err := d.BiltransWithQueue("cat<n><pl>")
	assert.Nil(err)
	assert.Equal(0, queueLen)
	assert.Equal("^cat<n><pl>/gato<n><pl>$", out)
}

func TestBiltransUnknownWordMarkedWithAt(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildBidix()
	d := NewBilingualDriver(root, chars, NewConfig())

	out, err := d.Biltrans("dog<n>")
	assert.Nil(err)
	assert.Equal("^dog<n>/@dog<n>$", out)
}

func TestBiltransAlreadyStarredWordPassesThrough(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildBidix()
	d := NewBilingualDriver(root, chars, NewConfig())

	out, err := d.Biltrans("*dog<n>")
	assert.Nil(err)
	assert.Equal("^*dog<n>/*dog<n>$", out)
}

func TestBiltransEmptyWord(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildBidix()
	d := NewBilingualDriver(root, chars, NewConfig())

	out, err := d.Biltrans("")
	assert.Nil(err)
	assert.Equal("^/@$", out)
}

func TestComposeSplicesTrailingQueueAtTail(t *testing.T) {
	assert := assert.New(t)
	alphabet := NewAlphabet()
	pl := alphabet.Intern("<pl>")

	out := compose("gato<n>", []SymbolID{pl}, alphabet)
	assert.Equal("gato<n><pl>", out)
}

func TestComposeNoQueueReturnsResultUnchanged(t *testing.T) {
	assert := assert.New(t)
	alphabet := NewAlphabet()
	out := compose("gato<n><pl>", nil, alphabet)
	assert.Equal("gato<n><pl>", out)
}

func TestComposeSplicesBeforeEachAlternative(t *testing.T) {
	assert := assert.New(t)
	alphabet := NewAlphabet()
	pl := alphabet.Intern("<pl>")

	out := compose("gato<n>/gata<n>", []SymbolID{pl}, alphabet)
	assert.Equal("gato<n><pl>/gata<n><pl>", out)
}
