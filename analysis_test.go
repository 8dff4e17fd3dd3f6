package lttproc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeKnownWordFollowedBySpace(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCatDict()
	d := NewAnalysisDriver(root, chars, NewConfig())
	rd := NewReader(strings.NewReader("cat "), root.Alphabet, chars)

	var w bytes.Buffer
	assert.Nil(d.Analyze(rd, &w))
	assert.Equal("^cat/cat<n>$ ", w.String())
}

func TestAnalyzeUnknownWordIsStarred(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCatDict()
	chars.AddAlphabetic([]rune("dog"))
	d := NewAnalysisDriver(root, chars, NewConfig())
	rd := NewReader(strings.NewReader("dog"), root.Alphabet, chars)

	var w bytes.Buffer
	assert.Nil(d.Analyze(rd, &w))
	assert.Equal("^dog/*dog$", w.String())
}

func TestAnalyzePreservesBracketBlank(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCatDict()
	chars.AddAlphabetic([]rune("dog"))
	d := NewAnalysisDriver(root, chars, NewConfig())
	rd := NewReader(strings.NewReader("cat[ x ]dog"), root.Alphabet, chars)

	var w bytes.Buffer
	assert.Nil(d.Analyze(rd, &w))
	assert.Equal("^cat/cat<n>$[ x ]^dog/*dog$", w.String())
}

func TestAnalyzeUsesCompoundFallback(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCompoundDict()
	cfg := NewConfig()
	d := NewAnalysisDriver(root, chars, cfg).WithCompoundAnalyzer(NewCompoundAnalyzer(root, chars, cfg))
	rd := NewReader(strings.NewReader("doghouse"), root.Alphabet, chars)

	var w bytes.Buffer
	assert.Nil(d.Analyze(rd, &w))
	assert.Equal("^doghouse/dog<n>+house<n>$", w.String())
}

func TestShallowAnalyzeRendersSinglePlainReading(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCatDict()
	d := NewAnalysisDriver(root, chars, NewConfig())
	rd := NewReader(strings.NewReader("cat"), root.Alphabet, chars)

	var w bytes.Buffer
	assert.Nil(d.ShallowAnalyze(rd, &w))
	assert.Equal("^cat/cat<n>$", w.String())
}

func TestReinjectNumbersRestoresDigitRuns(t *testing.T) {
	assert := assert.New(t)
	root, _, chars := buildCatDict()
	d := NewAnalysisDriver(root, chars, NewConfig())
	d.TM = true
	rd := NewReader(strings.NewReader("dog"), root.Alphabet, chars)
	rd.Numbers = []string{"123"}

	out := reinjectNumbers(rd, "foo<n>bar")
	assert.Equal("foo123bar", out)
	assert.Empty(rd.Numbers)
}
