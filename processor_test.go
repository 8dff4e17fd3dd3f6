package lttproc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadBuildsProcessorFromBinary(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)
	assert.NotNil(p)
	assert.NotNil(p.Root)
	assert.NotNil(p.Chars)
}

func TestProcessorRunAnalysisModeEndToEnd(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)
	p.Chars.AddAlphabetic([]rune("cat"))

	var w bytes.Buffer
	assert.Nil(p.Run(ModeAnalysis, strings.NewReader("cat"), &w))
	assert.Equal("^cat/cat<n>$", w.String())
}

func TestProcessorRunGenerationModeEndToEnd(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)
	p.Chars.AddAlphabetic([]rune("cat"))

	var w bytes.Buffer
	assert.Nil(p.Run(ModeGeneration, strings.NewReader("^cat<n>$"), &w))
	assert.Equal("cat", w.String())
}

func TestProcessorRunNullFlushSplitsSegments(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	cfg.NullFlush = true
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)
	p.Chars.AddAlphabetic([]rune("cat"))

	input := "cat\x00cat"
	var w bytes.Buffer
	assert.Nil(p.Run(ModeAnalysis, strings.NewReader(input), &w))
	assert.Equal("^cat/cat<n>$\x00^cat/cat<n>$", w.String())
}

func TestProcessorRunRejectsUnrecognizedMode(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)

	var w bytes.Buffer
	err = p.Run(Mode(99), strings.NewReader("cat"), &w)
	assert.NotNil(err)
}

func TestFatalOnUnsupportedIgnoresNil(t *testing.T) {
	FatalOnUnsupported(nil)
}

func TestFatalOnUnsupportedWarnsOnSoftError(t *testing.T) {
	FatalOnUnsupported(newError(CompoundBlowup, "too many combinations"))
}

func TestSetterMethodsUpdateConfig(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	p := &Processor{Config: cfg}

	p.SetCaseSensitiveMode(true)
	p.SetDictionaryCaseMode(true)
	p.SetNullFlush(true)
	p.SetDisplayWeightsMode(true)
	p.SetGenerationMode(GenTaggedNM)
	p.SetCarefulCase(true)

	assert.True(cfg.CaseSensitive)
	assert.True(cfg.DictionaryCase)
	assert.True(cfg.NullFlush)
	assert.True(cfg.DisplayWeightsMode)
	assert.Equal(GenTaggedNM, cfg.GenerationMode)
	assert.True(cfg.CarefulCase)
}

func TestProcessorRunGenerationModeHonorsConfiguredSubmode(t *testing.T) {
	assert := assert.New(t)
	cfg := NewConfig()
	cfg.GenerationMode = GenTagged
	p, err := Load(bytes.NewReader(buildOneWordBinary()), cfg)
	assert.Nil(err)
	p.Chars.AddAlphabetic([]rune("cat"))

	var w bytes.Buffer
	assert.Nil(p.Run(ModeGeneration, strings.NewReader("^dog<n>$"), &w))
	assert.Equal("#dog-stripped", w.String())
}
