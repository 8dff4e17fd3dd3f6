package lttproc

import (
	"bufio"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// Mode selects which of the eight operating modes a Processor runs.
type Mode int

const (
	ModeAnalysis Mode = iota
	ModeTMAnalysis
	ModeGeneration
	ModeBilingual
	ModePostgeneration
	ModeIntergeneration
	ModeTransliteration
	ModeShallowAnalysis
)

// Processor owns one loaded dictionary (Root + CharSets) and the Config
// that governs every driver built over it, mirroring the original
// FSTProcessor's role as the single long-lived object a CLI invocation
// constructs once and then drives to completion.
type Processor struct {
	Root   *Root
	Chars  *CharSets
	Config *Config
}

// Load reads a compiled binary from r and validates it (spec.md §4.J).
func Load(r io.Reader, cfg *Config) (*Processor, error) {
	root, chars, err := LoadBinary(r)
	if err != nil {
		return nil, err
	}
	if err := root.Valid(); err != nil {
		return nil, err
	}
	if cfg.UseDefaultIgnoredChars {
		chars.UseDefaultIgnored()
	}
	return &Processor{Root: root, Chars: chars, Config: cfg}, nil
}

// LoadICX merges an ICX ignored-characters document into p's charsets.
func (p *Processor) LoadICX(r io.Reader) error {
	p.Config.UseIgnoredChars = true
	return p.Chars.ParseICX(r)
}

// LoadRCX merges an RCX diacritic-restoration document into p's charsets.
func (p *Processor) LoadRCX(r io.Reader) error {
	p.Config.UseRestoreChars = true
	return p.Chars.ParseRCX(r)
}

// SetCaseSensitiveMode mirrors FSTProcessor::setCaseSensitiveMode.
func (p *Processor) SetCaseSensitiveMode(v bool) { p.Config.CaseSensitive = v }

// SetDictionaryCaseMode mirrors FSTProcessor::setDictionaryCaseMode.
func (p *Processor) SetDictionaryCaseMode(v bool) { p.Config.DictionaryCase = v }

// SetNullFlush mirrors FSTProcessor::setNullFlush.
func (p *Processor) SetNullFlush(v bool) { p.Config.NullFlush = v }

// SetDisplayWeightsMode mirrors FSTProcessor::setDisplayWeightsMode.
func (p *Processor) SetDisplayWeightsMode(v bool) { p.Config.DisplayWeightsMode = v }

// SetGenerationMode selects which of spec.md §4.G's clean/unknown/all/
// tagged/tagged_nm submodes ModeGeneration renders with.
func (p *Processor) SetGenerationMode(m GenerationMode) { p.Config.GenerationMode = m }

// SetCarefulCase mirrors FSTProcessor::setCaseSensitiveMode's careful-case
// sibling: ModeGeneration steps uppercase letters through StepCareful
// instead of StepPair.
func (p *Processor) SetCarefulCase(v bool) { p.Config.CarefulCase = v }

// compoundAnalyzer builds a fresh compound fallback on every call, used by
// Run(ModeAnalysis, ...); a dictionary with no compound control symbols
// still gets one, it just never prunes anything.
func (p *Processor) compoundAnalyzer() *CompoundAnalyzer {
	return NewCompoundAnalyzer(p.Root, p.Chars, p.Config)
}

// Run dispatches to the driver for mode, streaming r to w until EOF. Under
// NullFlush (spec.md §5) it splits r into NUL-delimited segments, running
// mode's driver fresh over each one — which resets every per-segment
// scratch structure the driver owns without reloading the dictionary — and
// flushes w after re-emitting the NUL.
func (p *Processor) Run(mode Mode, r io.Reader, w io.Writer) error {
	if p.Config.NullFlush {
		return p.runNullFlush(mode, r, w)
	}
	return p.runOnce(mode, r, w)
}

// runNullFlush drives runOnce once per NUL-delimited segment of r.
func (p *Processor) runNullFlush(mode Mode, r io.Reader, w io.Writer) error {
	src := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		seg := &segmentReader{src: src}
		if err := p.runOnce(mode, seg, bw); err != nil {
			return err
		}
		if !seg.hitNull {
			return bw.Flush()
		}
		if _, err := bw.WriteRune(0); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}
}

// segmentReader presents one NUL-delimited run of r as its own io.Reader,
// reporting hitNull so the caller knows whether more segments follow.
type segmentReader struct {
	src     *bufio.Reader
	hitNull bool
	done    bool
}

func (s *segmentReader) Read(p []byte) (int, error) {
	if s.done || len(p) == 0 {
		return 0, io.EOF
	}
	b, err := s.src.ReadByte()
	if err != nil {
		s.done = true
		return 0, io.EOF
	}
	if b == 0 {
		s.hitNull = true
		s.done = true
		return 0, io.EOF
	}
	p[0] = b
	return 1, nil
}

func (p *Processor) runOnce(mode Mode, r io.Reader, w io.Writer) error {
	rd := NewReader(r, p.Root.Alphabet, p.Chars)

	switch mode {
	case ModeAnalysis:
		d := NewAnalysisDriver(p.Root, p.Chars, p.Config).WithCompoundAnalyzer(p.compoundAnalyzer())
		return d.Analyze(rd, w)

	case ModeTMAnalysis:
		d := NewAnalysisDriver(p.Root, p.Chars, p.Config).WithCompoundAnalyzer(p.compoundAnalyzer())
		d.TM = true
		return d.Analyze(rd, w)

	case ModeGeneration:
		gen := NewGenerationDriver(p.Root, p.Chars, p.Config, p.Config.GenerationMode)
		gen.CarefulCase = p.Config.CarefulCase
		return runUntilExhausted(func() (bool, error) { return gen.Generate(rd, w) })

	case ModeBilingual:
		bi := NewBilingualDriver(p.Root, p.Chars, p.Config)
		return runUntilExhausted(func() (bool, error) { return bi.Bilingual(rd, w) })

	case ModePostgeneration, ModeIntergeneration, ModeTransliteration:
		pg := NewPostgenDriver(p.Root, p.Chars, p.Config, mode)
		return pg.Run(rd, w)

	case ModeShallowAnalysis:
		d := NewAnalysisDriver(p.Root, p.Chars, p.Config).WithCompoundAnalyzer(p.compoundAnalyzer())
		return d.ShallowAnalyze(rd, w)

	default:
		return newError(BinaryUnsupported, "unrecognized processor mode")
	}
}

func runUntilExhausted(step func() (bool, error)) error {
	for {
		more, err := step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// FatalOnUnsupported logs and exits with status 1 for any non-nil err other
// than a non-fatal ProcessorError (a plain error, such as a failed file
// open, also exits), mirroring the original CLI's "upgrade!"/hard-exit paths
// for corrupt binaries and malformed dictionaries (spec.md §7).
func FatalOnUnsupported(err error) {
	if err == nil {
		return
	}
	if pe, ok := err.(*ProcessorError); ok && !pe.Fatal() {
		log.Warn().Err(err).Msg("recovered from a non-fatal processor error")
		return
	}
	log.Fatal().Err(err).Msg("processor aborted")
	os.Exit(1)
}
