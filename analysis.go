package lttproc

import (
	"io"
	"strings"
	"unicode"
)

// AnalysisDriver runs the longest-match analysis loop of spec.md §4.D over a
// Reader, writing "^surface/lexical$" token records to an io.Writer. When a
// CompoundAnalyzer is attached it also supplies the compound-decomposition
// fallback for otherwise-unknown words.
//
// Grounded on fst_processor.cc's analysis() (the canonical longest-match
// driver) and readAnalysis for the symbol source.
type AnalysisDriver struct {
	root     *Root
	alphabet *Alphabet
	chars    *CharSets
	cfg      *Config
	compound *CompoundAnalyzer // nil if decomposition control symbols weren't found

	// TM switches symbol acquisition to ReadTMAnalysis, collapsing digit
	// runs into "<n>" on input and reinjecting the literal run on output
	// (spec.md §4.C rule 7).
	TM bool
}

// readSymbol acquires the next symbol via ReadTMAnalysis or ReadAnalysis
// depending on d.TM.
func (d *AnalysisDriver) readSymbol(rd *Reader) (SymbolID, error) {
	if d.TM {
		return rd.ReadTMAnalysis()
	}
	return rd.ReadAnalysis(d.cfg.UseIgnoredChars)
}

// reinjectNumbers restores the literal digit runs TM analysis collapsed
// into "<n>" tags, consuming rd.Numbers in FIFO order.
func reinjectNumbers(rd *Reader, s string) string {
	if len(rd.Numbers) == 0 {
		return s
	}
	out := s
	for strings.Contains(out, "<n>") && len(rd.Numbers) > 0 {
		out = strings.Replace(out, "<n>", rd.Numbers[0], 1)
		rd.Numbers = rd.Numbers[1:]
	}
	return out
}

// NewAnalysisDriver builds a driver bound to root's classification maps.
func NewAnalysisDriver(root *Root, chars *CharSets, cfg *Config) *AnalysisDriver {
	return &AnalysisDriver{root: root, alphabet: root.Alphabet, chars: chars, cfg: cfg}
}

// WithCompoundAnalyzer enables the unknown-word fallback of step 5e.
func (d *AnalysisDriver) WithCompoundAnalyzer(c *CompoundAnalyzer) *AnalysisDriver {
	d.compound = c
	return d
}

// isAlphabeticRune applies the loaded alphabetic-letters set, falling back
// to unicode.IsLetter when the binary carried no explicit letter table.
func (d *AnalysisDriver) isAlphabeticRune(r rune) bool {
	if d.chars.AlphabeticChars != nil {
		return d.chars.IsAlphabetic(r)
	}
	return unicode.IsLetter(r)
}

// restoreAlternatives returns the extra input symbols a restore-chars entry
// substitutes for r, per spec.md §4.D rule 3.
func (d *AnalysisDriver) restoreAlternatives(r rune) []SymbolID {
	set := d.chars.RestoreChars[r]
	if len(set) == 0 {
		return nil
	}
	out := make([]SymbolID, 0, len(set))
	for alt := range set {
		out = append(out, SymbolID(alt))
	}
	return out
}

// foldedStep applies spec.md §4.D rule 3: plain case folding, optionally
// widened by restore-chars substitutes of v and of towlower(v).
func (d *AnalysisDriver) foldedStep(ss *StateSet, v SymbolID) {
	r := rune(v)
	if d.alphabet.IsTagID(v) || !unicode.IsLetter(r) {
		ss.Step(v)
		return
	}

	var alts []SymbolID
	if unicode.IsUpper(r) && !d.cfg.CaseSensitive {
		lo := towlower(r)
		alts = append(alts, v, SymbolID(lo))
		if d.cfg.UseRestoreChars {
			alts = append(alts, d.restoreAlternatives(r)...)
			alts = append(alts, d.restoreAlternatives(lo)...)
		}
	} else {
		alts = append(alts, v)
		if d.cfg.UseRestoreChars {
			alts = append(alts, d.restoreAlternatives(r)...)
		}
	}
	if len(alts) == 1 {
		ss.Step(alts[0])
		return
	}
	ss.StepSet(alts)
}

// caseFlags implements spec.md §4.D's "Case determination for filtered
// finals": firstupper = iswupper(sf[0]), uppercase = firstupper ∧
// iswupper(sf[-1]); both forced false under DictionaryCase.
func (d *AnalysisDriver) caseFlags(sf []rune) (uppercase, firstupper bool) {
	if d.cfg.DictionaryCase || len(sf) == 0 {
		return false, false
	}
	firstupper = unicode.IsUpper(sf[0])
	uppercase = firstupper && unicode.IsUpper(sf[len(sf)-1])
	return uppercase, firstupper
}

// writeToken writes one "^surface/lexical$" record, popping a queued blank
// for every literal space inside surface (spec.md §4.D, "pop-blanks-while-
// writing") and escaping surface's metacharacters.
func writeToken(w io.Writer, blanks *BlankQueue, surface, lexical string) {
	io.WriteString(w, "^")
	for _, r := range surface {
		if r == ' ' {
			if b, ok := blanks.Peek(); ok && b == " " {
				blanks.Pop()
			}
			io.WriteString(w, " ")
			continue
		}
		if IsEscapedRune(r) {
			io.WriteString(w, "\\")
		}
		io.WriteString(w, string(r))
	}
	io.WriteString(w, "/")
	io.WriteString(w, lexical)
	io.WriteString(w, "$")
}

// IsEscapedRune reports whether r is one of the fixed stream metacharacters,
// independent of any loaded CharSets (used for surface text which is never
// filtered through the binary's own escape set).
func IsEscapedRune(r rune) bool {
	switch r {
	case '[', ']', '{', '}', '^', '$', '/', '\\', '@', '<', '>':
		return true
	default:
		return false
	}
}

// echoSymbol implements the "echo v" half of rule 5a: for a bare space it
// prefers restoring the next queued blank verbatim over writing a literal
// space, otherwise it writes v's rendered form unescaped (readAnalysis
// already diverted anything that needed escaping before v reached here).
func (d *AnalysisDriver) echoSymbol(w io.Writer, blanks *BlankQueue, v SymbolID) {
	if v == SymbolID(' ') {
		if b, ok := blanks.Pop(); ok {
			io.WriteString(w, b)
			return
		}
		io.WriteString(w, " ")
		return
	}
	io.WriteString(w, d.alphabet.Lookup(v))
}

// finals is a small bundle threaded through the analysis loop to avoid a
// six-argument classification call at every iteration.
type finals struct {
	lf                               string
	committedLen                     int
	lastPos                          int
	lastIncond, lastPostblank, lastPreblank bool
}

func (d *AnalysisDriver) classify(ss *StateSet, sf []rune, v SymbolID, pos int, f *finals) {
	cls := d.root.classified
	renderWith := func(m map[transKey]float64) string {
		up, first := d.caseFlags(sf)
		form := ss.FilterFinals(m, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, up, first)
		return strings.TrimPrefix(form, "/")
	}
	switch {
	case ss.IsFinalIn(cls[Inconditional]):
		f.lf, f.lastPos, f.committedLen = renderWith(cls[Inconditional]), pos, len(sf)
		f.lastIncond, f.lastPostblank, f.lastPreblank = true, false, false
	case ss.IsFinalIn(cls[Postblank]):
		f.lf, f.lastPos, f.committedLen = renderWith(cls[Postblank]), pos, len(sf)
		f.lastIncond, f.lastPostblank, f.lastPreblank = false, true, false
	case ss.IsFinalIn(cls[Preblank]):
		f.lf, f.lastPos, f.committedLen = renderWith(cls[Preblank]), pos, len(sf)
		f.lastIncond, f.lastPostblank, f.lastPreblank = false, false, true
	case ss.IsFinalIn(cls[Standard]) && !d.isAlphabeticRune(rune(v)):
		f.lf, f.lastPos, f.committedLen = renderWith(cls[Standard]), pos, len(sf)
		f.lastIncond, f.lastPostblank, f.lastPreblank = false, false, false
	}
}

// emitCommitted writes the word pending in f/sf using whichever sticky
// class won, per spec.md §4.D step 5's bc/d/else branches.
func (d *AnalysisDriver) emitCommitted(rd *Reader, w io.Writer, blanks *BlankQueue, sf []rune, f finals) {
	committed := string(sf[:f.committedLen])
	if d.TM {
		committed = reinjectNumbers(rd, committed)
		f.lf = reinjectNumbers(rd, f.lf)
	}
	switch {
	case f.lastPostblank:
		writeToken(w, blanks, committed, f.lf)
		io.WriteString(w, " ")
	case f.lastPreblank:
		io.WriteString(w, " ")
		writeToken(w, blanks, committed, f.lf)
	default: // lastIncond or plain standard — both render the same way
		writeToken(w, blanks, committed, f.lf)
	}
}

// consumeUnknownWord implements rule 5e: having failed to match anything
// with v as the first character of a word, keep reading raw alphabetic
// characters (bypassing the FST entirely) until a non-alphabetic
// terminator, then emit the unknown-word record (or its compound
// decomposition).
func (d *AnalysisDriver) consumeUnknownWord(rd *Reader, w io.Writer, first SymbolID) error {
	word := []rune{rune(first)}
	for {
		v, err := d.readSymbol(rd)
		if err != nil {
			return err
		}
		if v == symEOF {
			break
		}
		if d.alphabet.IsTagID(v) || !d.isAlphabeticRune(rune(v)) {
			rd.Buf.Back(1)
			break
		}
		word = append(word, rune(v))
	}

	w0 := string(word)
	if d.TM {
		w0 = reinjectNumbers(rd, w0)
	}
	lexical := "*" + w0
	if d.compound != nil {
		if decomposed, ok := d.compound.Decompose(w0, d.cfg.CaseSensitive); ok {
			lexical = decomposed
		}
	}
	writeToken(w, rd.Blanks, w0, lexical)
	return nil
}

// Analyze runs the longest-match driver described in spec.md §4.D end to
// end: rd supplies symbols via ReadAnalysis, w receives "^surface/lf$"
// records interleaved with rd's preserved blanks.
func (d *AnalysisDriver) Analyze(rd *Reader, w io.Writer) error {
	ss := NewStateSet(d.root)

	var sf []rune
	var f finals

	resetWord := func() {
		ss.Reset()
		sf = sf[:0]
		f = finals{}
	}

	for {
		v, err := d.readSymbol(rd)
		if err != nil {
			return err
		}

		if v == symEOF {
			if len(sf) > 0 {
				// The state reached by sf's last symbol was never classified —
				// that only happens right before stepping the *next* symbol, and
				// there isn't one here. Run it once more against true EOF, which
				// isAlphabeticRune treats as the non-alphabetic terminator rule
				// 5's Standard case expects.
				d.classify(ss, sf, 0, rd.Buf.Pos(), &f)
				if f.lf == "" && d.isAlphabeticRune(sf[0]) {
					lexical := "*" + string(sf)
					if d.compound != nil {
						if decomposed, ok := d.compound.Decompose(string(sf), d.cfg.CaseSensitive); ok {
							lexical = decomposed
						}
					}
					writeToken(w, rd.Blanks, string(sf), lexical)
				} else {
					d.emitCommitted(rd, w, rd.Blanks, sf, f)
				}
			}
			break
		}

		pos := rd.Buf.Pos()
		d.classify(ss, sf, v, pos, &f)

		d.foldedStep(ss, v)
		if ss.Size() > 0 {
			sf = append(sf, []rune(d.alphabet.Lookup(v))...)
			continue
		}

		if len(sf) == 0 {
			if d.alphabet.IsTagID(v) || !d.isAlphabeticRune(rune(v)) {
				d.echoSymbol(w, rd.Blanks, v)
				resetWord()
				continue
			}
			if err := d.consumeUnknownWord(rd, w, v); err != nil {
				return err
			}
			resetWord()
			continue
		}

		if f.lf == "" && d.isAlphabeticRune(sf[0]) {
			// Rule 5d/5e boundary: nothing ever matched for this run. Treat
			// the whole accumulated sf as the unknown word; no FST state to
			// resume from, so simply re-run the raw-alphabetic consumption
			// seeded with sf's first character and replay the rest.
			rd.Buf.SetPos(pos)
			rd.Buf.Back(len(sf) + 1)
			resetWord()
			v0, err := d.readSymbol(rd)
			if err != nil {
				return err
			}
			if err := d.consumeUnknownWord(rd, w, v0); err != nil {
				return err
			}
			continue
		}

		d.emitCommitted(rd, w, rd.Blanks, sf, f)
		rd.Buf.SetPos(f.lastPos)
		rd.Buf.Back(1)
		resetWord()
	}

	for _, b := range rd.Blanks.DrainTo() {
		io.WriteString(w, b)
	}
	return nil
}

// ShallowAnalyze runs the same longest-match driver as Analyze but renders
// each committed word through FilterFinalsSAO instead of FilterFinals: a
// single undelimited, unweighted reading per word (spec.md's supplemented
// SAO mode, fst_processor.cc's initSAO/printSAOWord). It reuses classify's
// priority logic and emitCommitted; only the render step differs.
func (d *AnalysisDriver) ShallowAnalyze(rd *Reader, w io.Writer) error {
	ss := NewStateSet(d.root)

	var sf []rune
	var f finals

	resetWord := func() {
		ss.Reset()
		sf = sf[:0]
		f = finals{}
	}

	classifySAO := func(v SymbolID, pos int) {
		cls := d.root.classified
		renderWith := func(m map[transKey]float64) string {
			up, first := d.caseFlags(sf)
			return ss.FilterFinalsSAO(m, d.chars, up, first)
		}
		switch {
		case ss.IsFinalIn(cls[Inconditional]):
			f.lf, f.lastPos, f.committedLen = renderWith(cls[Inconditional]), pos, len(sf)
			f.lastIncond, f.lastPostblank, f.lastPreblank = true, false, false
		case ss.IsFinalIn(cls[Postblank]):
			f.lf, f.lastPos, f.committedLen = renderWith(cls[Postblank]), pos, len(sf)
			f.lastIncond, f.lastPostblank, f.lastPreblank = false, true, false
		case ss.IsFinalIn(cls[Preblank]):
			f.lf, f.lastPos, f.committedLen = renderWith(cls[Preblank]), pos, len(sf)
			f.lastIncond, f.lastPostblank, f.lastPreblank = false, false, true
		case ss.IsFinalIn(cls[Standard]) && !d.isAlphabeticRune(rune(v)):
			f.lf, f.lastPos, f.committedLen = renderWith(cls[Standard]), pos, len(sf)
			f.lastIncond, f.lastPostblank, f.lastPreblank = false, false, false
		}
	}

	for {
		v, err := d.readSymbol(rd)
		if err != nil {
			return err
		}

		if v == symEOF {
			if len(sf) > 0 {
				// The state reached by sf's last symbol was never classified —
				// that only happens right before stepping the *next* symbol, and
				// there isn't one here. Run it once more against true EOF, which
				// isAlphabeticRune treats as the non-alphabetic terminator rule
				// 5's Standard case expects.
				classifySAO(0, rd.Buf.Pos())
				if f.lf == "" && d.isAlphabeticRune(sf[0]) {
					lexical := "*" + string(sf)
					if d.compound != nil {
						if decomposed, ok := d.compound.Decompose(string(sf), d.cfg.CaseSensitive); ok {
							lexical = decomposed
						}
					}
					writeToken(w, rd.Blanks, string(sf), lexical)
				} else {
					d.emitCommitted(rd, w, rd.Blanks, sf, f)
				}
			}
			break
		}

		pos := rd.Buf.Pos()
		classifySAO(v, pos)

		d.foldedStep(ss, v)
		if ss.Size() > 0 {
			sf = append(sf, []rune(d.alphabet.Lookup(v))...)
			continue
		}

		if len(sf) == 0 {
			if d.alphabet.IsTagID(v) || !d.isAlphabeticRune(rune(v)) {
				d.echoSymbol(w, rd.Blanks, v)
				resetWord()
				continue
			}
			if err := d.consumeUnknownWord(rd, w, v); err != nil {
				return err
			}
			resetWord()
			continue
		}

		if f.lf == "" && d.isAlphabeticRune(sf[0]) {
			rd.Buf.SetPos(pos)
			rd.Buf.Back(len(sf) + 1)
			resetWord()
			v0, err := d.readSymbol(rd)
			if err != nil {
				return err
			}
			if err := d.consumeUnknownWord(rd, w, v0); err != nil {
				return err
			}
			continue
		}

		d.emitCommitted(rd, w, rd.Blanks, sf, f)
		rd.Buf.SetPos(f.lastPos)
		rd.Buf.Back(1)
		resetWord()
	}

	for _, b := range rd.Blanks.DrainTo() {
		io.WriteString(w, b)
	}
	return nil
}
