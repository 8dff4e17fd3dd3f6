package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lttgo/lttproc"
)

func writeFile(path, content string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(content)
	return err
}

// resetCLI zeroes every cli flag a test might have set, so tests can run in
// any order without leaking state through the shared package var.
func resetCLI() {
	cli.Generation = false
	cli.Bilingual = false
	cli.Postgeneration = false
	cli.Intergeneration = false
	cli.Transliteration = false
	cli.TranslationMemory = false
	cli.Shallow = false
	cli.GenUnknown = false
	cli.GenAll = false
	cli.GenTagged = false
	cli.GenTaggedNM = false
	cli.CarefulCase = false
}

func TestSelectModeDefaultsToAnalysis(t *testing.T) {
	assert := assert.New(t)
	resetCLI()

	assert.Equal(lttproc.ModeAnalysis, selectMode())
}

func TestSelectModePicksFirstSetFlag(t *testing.T) {
	assert := assert.New(t)
	resetCLI()

	cli.Generation = true
	assert.Equal(lttproc.ModeGeneration, selectMode())
	cli.Generation = false

	cli.Bilingual = true
	assert.Equal(lttproc.ModeBilingual, selectMode())
	cli.Bilingual = false

	cli.Postgeneration = true
	assert.Equal(lttproc.ModePostgeneration, selectMode())
	cli.Postgeneration = false

	cli.Intergeneration = true
	assert.Equal(lttproc.ModeIntergeneration, selectMode())
	cli.Intergeneration = false

	cli.Transliteration = true
	assert.Equal(lttproc.ModeTransliteration, selectMode())
	cli.Transliteration = false

	cli.TranslationMemory = true
	assert.Equal(lttproc.ModeTMAnalysis, selectMode())
	cli.TranslationMemory = false

	cli.Shallow = true
	assert.Equal(lttproc.ModeShallowAnalysis, selectMode())
	cli.Shallow = false
}

func TestSelectGenerationModeDefaultsToClean(t *testing.T) {
	assert := assert.New(t)
	resetCLI()

	assert.Equal(lttproc.GenClean, selectGenerationMode())
}

func TestSelectGenerationModePicksFirstSetFlag(t *testing.T) {
	assert := assert.New(t)
	resetCLI()

	cli.GenUnknown = true
	assert.Equal(lttproc.GenUnknown, selectGenerationMode())
	cli.GenUnknown = false

	cli.GenAll = true
	assert.Equal(lttproc.GenAll, selectGenerationMode())
	cli.GenAll = false

	cli.GenTagged = true
	assert.Equal(lttproc.GenTagged, selectGenerationMode())
	cli.GenTagged = false

	cli.GenTaggedNM = true
	assert.Equal(lttproc.GenTaggedNM, selectGenerationMode())
	cli.GenTaggedNM = false
}

func TestLoadSideFileReadsFileContent(t *testing.T) {
	assert := assert.New(t)

	tmp := t.TempDir() + "/side.icx"
	if err := writeFile(tmp, "x"); err != nil {
		t.Fatal(err)
	}

	var seen string
	err := loadSideFile(tmp, func(r io.Reader) error {
		buf := make([]byte, 8)
		n, _ := r.Read(buf)
		seen = string(buf[:n])
		return nil
	})
	assert.Nil(err)
	assert.Equal("x", seen)
}

func TestLoadSideFileMissingFileErrors(t *testing.T) {
	assert := assert.New(t)
	err := loadSideFile("/no/such/file", func(r io.Reader) error {
		return nil
	})
	assert.NotNil(err)
}
