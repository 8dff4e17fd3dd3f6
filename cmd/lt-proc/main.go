// Command lt-proc drives one Processor over stdin/stdout (or explicit
// input/output files), selecting its operating mode from a small set of
// mutually exclusive flags mirroring lt-proc(1)'s own switches.
//
// Grounded on KorAP-Datok's cmd/datok.go for the kong wiring and the
// stdin-pipe-detection idiom; no lt_proc.cc was present in this pack's
// original_source/ to ground the exact flag names against, so the flag
// set is this repo's own decision (recorded in DESIGN.md).
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/lttgo/lttproc"
)

var cli struct {
	Dictionary string `kong:"arg,required,help='Compiled FST binary (LTTB or legacy format).'"`

	Generation        bool `kong:"short='g',help='Generation mode.'"`
	Bilingual         bool `kong:"short='b',help='Bilingual transfer mode.'"`
	Postgeneration    bool `kong:"short='p',help='Post-generation mode.'"`
	Intergeneration   bool `kong:"short='i',help='Inter-generation mode.'"`
	Transliteration   bool `kong:"short='t',help='Transliteration mode.'"`
	TranslationMemory bool `kong:"short='m',help='Translation-memory analysis mode.'"`
	Shallow           bool `kong:"short='s',help='Shallow analysis output mode (SAO).'"`

	GenUnknown   bool `kong:"short='n',help='Generation: keep starred tokens verbatim and render unmatched ones as #W-stripped (unknown submode).'"`
	GenAll       bool `kong:"short='N',help='Generation: render every unmatched token verbatim or #-prefixed (all submode).'"`
	GenTagged    bool `kong:"short='T',help='Generation: wrap matched tokens in a ^form/W-tagged$ record and render unmatched ones as #W-stripped (tagged submode).'"`
	GenTaggedNM  bool `kong:"short='G',help='Generation: like tagged, but also wraps unmatched, starred and @-marked tokens in a ^W/#W-tagged$ record (tagged_nm submode).'"`
	CarefulCase  bool `kong:"short='c',help='Generation: step ambiguous uppercase letters carefully instead of merging the lower/upper branches.'"`

	CaseSensitive  bool   `kong:"short='z',help='Treat case as significant when matching.'"`
	DictionaryCase bool   `kong:"short='d',help='Always render surfaces in their dictionary case.'"`
	NullFlush      bool   `kong:"short='0',help='Treat NUL bytes in the stream as segment boundaries.'"`
	Weights        bool   `kong:"short='W',help='Append <W:weight> to every rendered analysis.'"`
	IgnoredChars   string `kong:"short='I',help='ICX file of characters to ignore while matching.'"`
	RestoreChars   string `kong:"short='R',help='RCX file of diacritic-restoration substitutes.'"`

	Input  string `kong:"short='f',help='Read from this file instead of stdin.'"`
	Output string `kong:"short='o',help='Write to this file instead of stdout.'"`
}

func main() {
	parser := kong.Must(
		&cli,
		kong.Name("lt-proc"),
		kong.Description("Finite-state transducer runtime for morphological analysis, generation, and transfer."),
		kong.UsageOnError(),
	)

	_, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	dictFile, err := os.Open(cli.Dictionary)
	if err != nil {
		lttproc.FatalOnUnsupported(err)
		return
	}
	defer dictFile.Close()

	cfg := lttproc.NewConfig()
	cfg.CaseSensitive = cli.CaseSensitive
	cfg.DictionaryCase = cli.DictionaryCase
	cfg.NullFlush = cli.NullFlush
	cfg.DisplayWeightsMode = cli.Weights
	cfg.GenerationMode = selectGenerationMode()
	cfg.CarefulCase = cli.CarefulCase

	proc, err := lttproc.Load(dictFile, cfg)
	if err != nil {
		lttproc.FatalOnUnsupported(err)
		return
	}

	if cli.IgnoredChars != "" {
		if err := loadSideFile(cli.IgnoredChars, proc.LoadICX); err != nil {
			lttproc.FatalOnUnsupported(err)
			return
		}
	}
	if cli.RestoreChars != "" {
		if err := loadSideFile(cli.RestoreChars, proc.LoadRCX); err != nil {
			lttproc.FatalOnUnsupported(err)
			return
		}
	}

	in, out := os.Stdin, io.Writer(os.Stdout)
	if cli.Input != "" {
		f, err := os.Open(cli.Input)
		if err != nil {
			lttproc.FatalOnUnsupported(err)
			return
		}
		defer f.Close()
		in = f
	}
	if cli.Output != "" {
		f, err := os.Create(cli.Output)
		if err != nil {
			lttproc.FatalOnUnsupported(err)
			return
		}
		defer f.Close()
		out = f
	}

	if fi, statErr := os.Stdin.Stat(); cli.Input != "" || statErr == nil && fi.Mode()&os.ModeCharDevice == 0 {
		lttproc.FatalOnUnsupported(proc.Run(selectMode(), in, out))
	}
}

func loadSideFile(path string, load func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return load(f)
}

func selectMode() lttproc.Mode {
	switch {
	case cli.Generation:
		return lttproc.ModeGeneration
	case cli.Bilingual:
		return lttproc.ModeBilingual
	case cli.Postgeneration:
		return lttproc.ModePostgeneration
	case cli.Intergeneration:
		return lttproc.ModeIntergeneration
	case cli.Transliteration:
		return lttproc.ModeTransliteration
	case cli.TranslationMemory:
		return lttproc.ModeTMAnalysis
	case cli.Shallow:
		return lttproc.ModeShallowAnalysis
	default:
		return lttproc.ModeAnalysis
	}
}

// selectGenerationMode picks ModeGeneration's clean/unknown/all/tagged/
// tagged_nm submode (spec.md §4.G) from the -n/-N/-T/-G flags, defaulting
// to clean (drop the leading */%/@ marker; tags are stripped from @-marked
// and unmatched tokens but kept on starred ones) when none are set. Only meaningful
// when selectMode() returns ModeGeneration; harmless no-op otherwise.
func selectGenerationMode() lttproc.GenerationMode {
	switch {
	case cli.GenTaggedNM:
		return lttproc.GenTaggedNM
	case cli.GenTagged:
		return lttproc.GenTagged
	case cli.GenAll:
		return lttproc.GenAll
	case cli.GenUnknown:
		return lttproc.GenUnknown
	default:
		return lttproc.GenClean
	}
}
