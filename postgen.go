package lttproc

import (
	"io"
	"strings"
	"unicode"
)

// PostgenDriver runs spec.md §4.H's three raw-text drivers — postgeneration,
// intergeneration, and transliteration. All three share one reader
// primitive (Reader.ReadPostgeneration) and the component-E stepping
// machinery; they differ only in how they delimit an active region and
// what they do when a run fails to reach a final.
//
// Grounded on fst_processor.cc's postgeneration()/intergeneration()/
// transliteration(); the per-character recasing fst_processor.cc repeats
// inline at every call site (iswupper(sf[1])/iswupper(sf[2]) over a
// 1-indexed buffer) is factored once here as caseFromRun, since the three
// drivers are already sitting in the same file.
type PostgenDriver struct {
	root     *Root
	alphabet *Alphabet
	chars    *CharSets
	cfg      *Config
	mode     Mode
}

// NewPostgenDriver builds a driver over root for one of ModePostgeneration,
// ModeIntergeneration, or ModeTransliteration.
func NewPostgenDriver(root *Root, chars *CharSets, cfg *Config, mode Mode) *PostgenDriver {
	return &PostgenDriver{root: root, alphabet: root.Alphabet, chars: chars, cfg: cfg, mode: mode}
}

// Run dispatches to the algorithm matching d.mode.
func (d *PostgenDriver) Run(rd *Reader, w io.Writer) error {
	switch d.mode {
	case ModeIntergeneration:
		return d.runIntergeneration(rd, w)
	case ModeTransliteration:
		return d.runTransliteration(rd, w)
	default:
		return d.runPostgeneration(rd, w)
	}
}

func (d *PostgenDriver) stepCased(ss *StateSet, v SymbolID) {
	r := rune(v)
	if !unicode.IsUpper(r) || d.cfg.CaseSensitive {
		ss.Step(v)
		return
	}
	ss.StepPair(v, SymbolID(towlower(r)))
}

// caseFromRun infers uppercase/firstupper from the run collected so far,
// mirroring fst_processor.cc's iswupper(sf[1])/iswupper(sf[2]) probes (sf
// there carries a leading sentinel slot; ours doesn't, so the probe moves
// to sf[0]/sf[1]).
func caseFromRun(sf []rune) (uppercase, firstupper bool) {
	if len(sf) == 0 {
		return false, false
	}
	firstupper = unicode.IsUpper(sf[0])
	uppercase = len(sf) > 1 && firstupper && unicode.IsUpper(sf[1])
	return uppercase, firstupper
}

// echoRaw writes v to w exactly as the reader's own skip-mode passthrough
// would: blanks prefer a queued replacement, everything else gets escaped
// if it's one of the stream metacharacters.
func (d *PostgenDriver) echoRaw(w io.Writer, blanks *BlankQueue, v SymbolID) {
	r := rune(v)
	if unicode.IsSpace(r) {
		if b, ok := blanks.Pop(); ok {
			io.WriteString(w, b)
			return
		}
		io.WriteString(w, string(r))
		return
	}
	if d.chars.IsEscaped(r) {
		io.WriteString(w, "\\")
	}
	io.WriteString(w, string(r))
}

// runTransliteration implements fst_processor.cc's transliteration(): no
// active-region marker, every punctuation or space character forces a
// decision (emit the filtered match, or fall through to the raw text read
// so far) and otherwise the state set keeps stepping.
func (d *PostgenDriver) runTransliteration(rd *Reader, w io.Writer) error {
	ss := NewReverseStateSet(d.root)
	var sf []rune
	var lf string
	last := 0

	reset := func() {
		ss.Reset()
		sf = sf[:0]
		lf = ""
	}

	for {
		v, _, err := rd.ReadPostgeneration(w)
		if err != nil {
			return err
		}
		if v == symEOF {
			break
		}
		r := rune(v)

		if unicode.IsPunct(r) || unicode.IsSpace(r) {
			uppercase, firstupper := caseFromRun(sf)
			lf = ss.FilterFinals(d.root.allFinals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper)
			if lf != "" {
				io.WriteString(w, strings.TrimPrefix(lf, "/"))
				reset()
			}
			d.echoRaw(w, rd.Blanks, v)
			continue
		}

		if ss.IsFinalIn(d.root.allFinals) {
			uppercase, firstupper := caseFromRun(sf)
			lf = ss.FilterFinals(d.root.allFinals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper)
			last = rd.Buf.Pos()
		}

		d.stepCased(ss, v)
		if ss.Size() != 0 {
			sf = append(sf, r)
			continue
		}

		if lf != "" {
			io.WriteString(w, strings.TrimPrefix(lf, "/"))
			rd.Buf.SetPos(last)
			rd.Buf.Back(1)
		} else {
			d.echoRaw(w, rd.Blanks, v)
		}
		reset()
	}

	for _, b := range rd.Blanks.DrainTo() {
		io.WriteString(w, b)
	}
	return nil
}

// runIntergeneration implements fst_processor.cc's intergeneration(): a
// skip_mode passthrough until a literal '~' is seen, then matching against
// source until the state set empties, emitting target on success or
// replaying the un-matched source (up to the next '~') on failure.
func (d *PostgenDriver) runIntergeneration(rd *Reader, w io.Writer) error {
	ss := NewReverseStateSet(d.root)
	skipMode := true
	var source []rune
	var target string
	last := 0

	reset := func() {
		ss.Reset()
		source = source[:0]
		target = ""
		skipMode = true
	}

	for {
		v, _, err := rd.ReadPostgeneration(w)
		if err != nil {
			return err
		}

		wasSkip := skipMode
		if v == SymbolID('~') {
			skipMode = false
		}

		if skipMode {
			if v == symEOF {
				break
			}
			d.echoRaw(w, rd.Blanks, v)
			continue
		}

		if wasSkip && v == SymbolID('~') {
			// the delimiter that just opened this active region: a pure
			// mode-transition marker, never itself matched against the FST.
			continue
		}

		if ss.IsFinalIn(d.root.allFinals) {
			uppercase, firstupper := caseFromRun(source)
			target = ss.FilterFinals(d.root.allFinals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper)
			last = rd.Buf.Pos()
		}

		if v != symEOF {
			d.stepCased(ss, v)
		}

		if v != symEOF && ss.Size() != 0 {
			source = append(source, rune(v))
			continue
		}

		switch {
		case target == "" && v == symEOF:
			io.WriteString(w, string(source))
		case target == "":
			mark := len(source)
			for i, r := range source {
				if r == '~' {
					mark = i
					break
				}
			}
			io.WriteString(w, string(source[:mark]))
			if mark != len(source) {
				rd.Buf.Back(len(source) - mark)
			}
			if v == SymbolID('~') {
				rd.Buf.Back(1)
			} else {
				io.WriteString(w, string(rune(v)))
			}
		default:
			for _, r := range strings.TrimPrefix(target, "/") {
				if unicode.IsSpace(r) {
					if b, ok := rd.Blanks.Pop(); ok {
						io.WriteString(w, b)
						continue
					}
					io.WriteString(w, string(r))
					continue
				}
				if d.chars.IsEscaped(r) {
					io.WriteString(w, "\\")
				}
				io.WriteString(w, string(r))
			}
			if v != symEOF {
				rd.Buf.SetPos(last)
				rd.Buf.Back(1)
			}
		}

		reset()
		if v == symEOF {
			break
		}
	}

	for _, b := range rd.Blanks.DrainTo() {
		io.WriteString(w, b)
	}
	return nil
}

// runPostgeneration implements fst_processor.cc's postgeneration(): like
// intergeneration it skips raw text until '~', but on success it recases
// the match against the trailing alphabetic run and on failure it only
// replays up to an embedded '~' (preserving a still-open active region)
// rather than the whole unmatched run. Wordbound blanks collected while
// skipping fold into one combined "[[a; b; c]]" block, attached right
// before the word they preceded.
func (d *PostgenDriver) runPostgeneration(rd *Reader, w io.Writer) error {
	ss := NewReverseStateSet(d.root)
	skipMode := true
	rd.CollectWBlanks = false
	var sf []rune
	var lf string
	last := 0

	reset := func() {
		ss.Reset()
		sf = sf[:0]
		lf = ""
		skipMode = true
		rd.CollectWBlanks = false
	}

	for {
		v, isWblank, err := rd.ReadPostgeneration(w)
		if err != nil {
			return err
		}
		if v == symEOF {
			break
		}
		wasSkip := skipMode
		if v == SymbolID('~') {
			skipMode = false
			rd.CollectWBlanks = true
		}

		if skipMode {
			if isWblank {
				continue
			}
			d.echoRaw(w, rd.Blanks, v)
			continue
		}

		if isWblank {
			continue
		}

		if wasSkip && v == SymbolID('~') {
			// the delimiter that just opened this active region: a pure
			// mode-transition marker, never itself matched against the FST.
			continue
		}

		if ss.IsFinalIn(d.root.allFinals) {
			uppercase, firstupper := caseFromRun(sf)
			lf = ss.FilterFinals(d.root.allFinals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper)
			last = rd.Buf.Pos()
		}

		d.stepCased(ss, v)
		if ss.Size() != 0 {
			sf = append(sf, rune(v))
			continue
		}

		combined, needEndWBlank := rd.WBlanks.Combine()
		io.WriteString(w, combined)

		if lf == "" {
			mark := len(sf)
			spaceIdx := -1
			for i, r := range sf {
				if r == '~' {
					mark = i
					break
				}
				if r == ' ' {
					spaceIdx = i
				}
			}
			if spaceIdx >= 0 {
				io.WriteString(w, string(sf[:spaceIdx]))
				io.WriteString(w, string(sf[spaceIdx]))
				io.WriteString(w, string(sf[spaceIdx+1:mark]))
			} else {
				io.WriteString(w, string(sf[:mark]))
			}
			if mark == len(sf) {
				rd.Buf.Back(1)
			} else {
				rd.Buf.Back(len(sf) - mark)
			}
		} else {
			io.WriteString(w, strings.TrimPrefix(lf, "/"))
			rd.Buf.SetPos(last)
			rd.Buf.Back(1)
		}

		if needEndWBlank {
			io.WriteString(w, closingWBlank)
		}

		reset()
	}

	for _, b := range rd.Blanks.DrainTo() {
		io.WriteString(w, b)
	}
	return nil
}
