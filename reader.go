package lttproc

import (
	"bufio"
	"io"
	"unicode"
)

// InputBuffer is an unbounded pushback buffer of symbol ids. Every symbol
// ever produced is appended to an internal log; Pos is a replay cursor
// into that log. Back(n) rewinds the cursor so the last n symbols
// are replayed by Next() instead of being re-read from the stream — this is
// the only backtracking mechanism the longest-match driver needs (spec.md
// §3, "Input buffer").
type InputBuffer struct {
	log []SymbolID
	pos int
}

// IsEmpty reports whether every logged symbol has already been replayed,
// i.e. the next read must come fresh from the underlying stream.
func (b *InputBuffer) IsEmpty() bool { return b.pos >= len(b.log) }

// Next returns the next symbol pending replay and advances the cursor.
func (b *InputBuffer) Next() SymbolID {
	v := b.log[b.pos]
	b.pos++
	return v
}

// Add appends a freshly read symbol to the log and marks it consumed.
func (b *InputBuffer) Add(v SymbolID) {
	b.log = append(b.log, v)
	b.pos = len(b.log)
}

// Pos returns the current replay cursor.
func (b *InputBuffer) Pos() int { return b.pos }

// SetPos jumps the replay cursor to a previously saved position.
func (b *InputBuffer) SetPos(p int) { b.pos = p }

// Back rewinds the replay cursor by n symbols, clamped at zero.
func (b *InputBuffer) Back(n int) {
	b.pos -= n
	if b.pos < 0 {
		b.pos = 0
	}
}

// DiffPrevPos returns the distance from the current cursor to a saved
// position. No driver in this package calls it.
func (b *InputBuffer) DiffPrevPos(last int) int { return b.pos - last }

// Reset drops the replay log entirely. Null-flush segment boundaries
// (spec.md §5) do not call it: runNullFlush builds a fresh Reader per segment.
func (b *InputBuffer) Reset() { b.log = b.log[:0]; b.pos = 0 }

// Reader tokenizes a raw byte stream into symbol ids according to the
// escape/bracket conventions of spec.md §4.C, sharing one InputBuffer and
// one pair of blank queues across all of the mode-specific Read* methods
// (only one mode is active per FSTProcessor instance).
type Reader struct {
	src      *bufio.Reader
	Alphabet *Alphabet
	Chars    *CharSets
	Buf      InputBuffer

	Blanks  *BlankQueue
	WBlanks *WBlankQueue

	// Numbers is the TM-analysis FIFO of raw digit-run strings collapsed
	// into a single "<n>" symbol (spec.md §4.C rule 7).
	Numbers []string

	// OutOfWord tracks whether ReadGeneration is currently
	// between "^...$" frames (spec.md §4.C rule 8).
	OutOfWord bool

	// CollectWBlanks, when true, makes postgeneration enqueue wordbound
	// blanks instead of folding them through wblankPostGen.
	CollectWBlanks bool
}

// NewReader wraps r for tokenization with the given alphabet and character
// sets; both must already reflect the loaded binary and any ICX/RCX input.
func NewReader(r io.Reader, alphabet *Alphabet, chars *CharSets) *Reader {
	return &Reader{
		src:       bufio.NewReader(r),
		Alphabet:  alphabet,
		Chars:     chars,
		Blanks:    NewBlankQueue(),
		WBlanks:   NewWBlankQueue(),
		OutOfWord: true,
	}
}

// getc reads one rune from the underlying stream, returning ok=false at EOF.
func (rd *Reader) getc() (rune, bool) {
	c, _, err := rd.src.ReadRune()
	if err != nil {
		return 0, false
	}
	return c, true
}

func (rd *Reader) ungetc(c rune) { rd.src.UnreadRune() }

// streamError builds the StreamMalformed error mandated by spec.md §4.J.
func streamError() error {
	return newError(StreamMalformed, "malformed input stream")
}

// ReadAnalysis implements spec.md §4.C's analysis-mode tokenization rules
// 1-6: ignored-char pushback, "<...>" tag interning, "[...]"/"[[...]]"
// blank capture, backslash escapes, and ordinary-space blank queuing.
func (rd *Reader) ReadAnalysis(useIgnored bool) (SymbolID, error) {
	if !rd.Buf.IsEmpty() {
		return rd.Buf.Next(), nil
	}

	c, ok := rd.getc()
	if !ok {
		rd.Buf.Add(symEOF)
		return symEOF, nil
	}

	if useIgnored && rd.Chars.IsIgnored(c) {
		rd.Buf.Add(SymbolID(c))
		c, ok = rd.getc()
		if !ok {
			rd.Buf.Add(symEOF)
			return symEOF, nil
		}
	}

	if rd.Chars.IsEscaped(c) {
		switch c {
		case '<':
			tag, err := rd.readFullBlock('<', '>')
			if err != nil {
				return 0, err
			}
			id := rd.Alphabet.Intern(tag)
			rd.Buf.Add(id)
			return id, nil

		case '[':
			c2, ok2 := rd.getc()
			if ok2 && c2 == '[' {
				wb, err := rd.readWblank()
				if err != nil {
					return 0, err
				}
				rd.WBlanks.Push(wb)
			} else {
				if ok2 {
					rd.ungetc(c2)
				}
				block, err := rd.readFullBlock('[', ']')
				if err != nil {
					return 0, err
				}
				rd.Blanks.Push(block)
			}
			rd.Buf.Add(SymbolID(' '))
			return SymbolID(' '), nil

		case '\\':
			c2, ok2 := rd.getc()
			if !ok2 {
				return 0, streamError()
			}
			rd.Buf.Add(SymbolID(c2))
			return SymbolID(c2), nil

		default:
			return 0, streamError()
		}
	}

	if c == ' ' {
		rd.Blanks.Push(" ")
	}

	rd.Buf.Add(SymbolID(c))
	return SymbolID(c), nil
}

// ReadTMAnalysis is ReadAnalysis plus spec.md §4.C rule 7: a run of decimal
// digits (unicode.IsDigit) collapses to one "<n>" symbol, and the literal run is pushed onto
// Numbers for later reinjection by the TM-analysis driver.
func (rd *Reader) ReadTMAnalysis() (SymbolID, error) {
	if !rd.Buf.IsEmpty() {
		return rd.Buf.Next(), nil
	}

	c, ok := rd.getc()
	if !ok {
		rd.Buf.Add(symEOF)
		return symEOF, nil
	}

	if !rd.Chars.IsEscaped(c) && !unicode.IsDigit(c) {
		rd.Buf.Add(SymbolID(c))
		return SymbolID(c), nil
	}

	switch {
	case c == '<':
		tag, err := rd.readFullBlock('<', '>')
		if err != nil {
			return 0, err
		}
		id := rd.Alphabet.Intern(tag)
		rd.Buf.Add(id)
		return id, nil

	case c == '[':
		c2, ok2 := rd.getc()
		if ok2 && c2 == '[' {
			wb, err := rd.readWblank()
			if err != nil {
				return 0, err
			}
			rd.WBlanks.Push(wb)
		} else {
			if ok2 {
				rd.ungetc(c2)
			}
			block, err := rd.readFullBlock('[', ']')
			if err != nil {
				return 0, err
			}
			rd.Blanks.Push(block)
		}
		rd.Buf.Add(SymbolID(' '))
		return SymbolID(' '), nil

	case c == '\\':
		c2, ok2 := rd.getc()
		if !ok2 {
			return 0, streamError()
		}
		rd.Buf.Add(SymbolID(c2))
		return SymbolID(c2), nil

	case unicode.IsDigit(c):
		run := []rune{c}
		for {
			c2, ok2 := rd.getc()
			if !ok2 {
				break
			}
			if !unicode.IsDigit(c2) {
				rd.ungetc(c2)
				break
			}
			run = append(run, c2)
		}
		id := rd.Alphabet.Intern("<n>")
		rd.Buf.Add(id)
		rd.Numbers = append(rd.Numbers, string(run))
		return id, nil

	default:
		return 0, streamError()
	}
}

// readFullBlock reads a "delim1...delim2" block (spec.md §4.C), honoring
// backslash escapes inside it, and returns the full block including delimiters.
func (rd *Reader) readFullBlock(delim1, delim2 rune) (string, error) {
	out := []rune{delim1}
	c := delim1
	for {
		var ok bool
		c, ok = rd.getc()
		if !ok {
			return "", streamError()
		}
		out = append(out, c)
		if c == '\\' {
			c2, ok2 := rd.getc()
			if !ok2 {
				return "", streamError()
			}
			out = append(out, c2)
			continue
		}
		if c == delim2 {
			break
		}
	}
	return string(out), nil
}

// readWblank reads a "[[...]]" wordbound blank, honoring nested escapes.
func (rd *Reader) readWblank() (string, error) {
	out := []rune{'[', '['}
	for {
		c, ok := rd.getc()
		if !ok {
			return "", streamError()
		}
		out = append(out, c)
		if c == '\\' {
			c2, ok2 := rd.getc()
			if !ok2 {
				return "", streamError()
			}
			out = append(out, c2)
			continue
		}
		if c == ']' {
			c2, ok2 := rd.getc()
			if !ok2 {
				return "", streamError()
			}
			out = append(out, c2)
			if c2 == ']' {
				return string(out), nil
			}
		}
	}
}

// ReadGeneration implements spec.md §4.C rule 8 for generation/postgen/
// translit/bilingual framing: bytes outside "^...$" are written straight
// to w, "^" opens a frame (consuming a leading "=" mark elsewhere), "$"
// closes it, and bracket blocks are still captured even outside a frame.
func (rd *Reader) ReadGeneration(w io.Writer) (SymbolID, error) {
	c, ok := rd.getc()
	if !ok {
		return symEOF, nil
	}

	if rd.OutOfWord {
		switch c {
		case '^':
			c, ok = rd.getc()
			if !ok {
				return symEOF, nil
			}
		case '\\':
			io.WriteString(w, string(c))
			c2, ok2 := rd.getc()
			if !ok2 {
				return symEOF, nil
			}
			io.WriteString(w, string(c2))
			if err := rd.skipUntil(w, '^'); err != nil {
				return 0, err
			}
			c, ok = rd.getc()
			if !ok {
				return symEOF, nil
			}
		default:
			io.WriteString(w, string(c))
			if err := rd.skipUntil(w, '^'); err != nil {
				return 0, err
			}
			c, ok = rd.getc()
			if !ok {
				return symEOF, nil
			}
		}
		rd.OutOfWord = false
	}

	switch c {
	case '\\':
		c2, ok2 := rd.getc()
		if !ok2 {
			return symEOF, nil
		}
		return SymbolID(c2), nil

	case '$':
		rd.OutOfWord = true
		return SymbolID('$'), nil

	case '<':
		tag, err := rd.readFullBlock('<', '>')
		if err != nil {
			return 0, err
		}
		return rd.Alphabet.Intern(tag), nil

	case '[':
		c2, ok2 := rd.getc()
		if ok2 && c2 == '[' {
			wb, err := rd.readWblank()
			if err != nil {
				return 0, err
			}
			io.WriteString(w, wb)
		} else {
			if ok2 {
				rd.ungetc(c2)
			}
			block, err := rd.readFullBlock('[', ']')
			if err != nil {
				return 0, err
			}
			io.WriteString(w, block)
		}
		return rd.ReadGeneration(w)

	default:
		return SymbolID(c), nil
	}
}

// symEOF is the sentinel every Read* method returns at true end of stream,
// mirroring the original's 0x7fffffff sentinel. It is distinct from
// SymbolID(0), which a literal embedded NUL byte decodes to and which must
// keep flowing through as ordinary data when NullFlush is off (spec.md
// §4.C rule 1).
const symEOF SymbolID = 0x7fffffff

// skipUntil copies bytes verbatim to w until character is seen (consumed,
// not written) or EOF, honoring backslash escapes.
func (rd *Reader) skipUntil(w io.Writer, character rune) error {
	for {
		c, ok := rd.getc()
		if !ok {
			return nil
		}
		switch c {
		case '\\':
			c2, ok2 := rd.getc()
			if !ok2 {
				return nil
			}
			io.WriteString(w, "\\"+string(c2))
		case character:
			return nil
		default:
			io.WriteString(w, string(c))
		}
	}
}

// ReadPostgeneration implements the postgeneration/intergeneration/
// transliteration reader: unlike ReadGeneration it carries no "^...$"
// framing, instead surfacing wordbound blanks either directly into
// WBlanks (collect mode) or via the combined "~"-signalled block
// wblankPostGen produces.
func (rd *Reader) ReadPostgeneration(w io.Writer) (SymbolID, bool, error) {
	if !rd.Buf.IsEmpty() {
		return rd.Buf.Next(), false, nil
	}

	c, ok := rd.getc()
	if !ok {
		rd.Buf.Add(symEOF)
		return symEOF, false, nil
	}

	switch c {
	case '<':
		tag, err := rd.readFullBlock('<', '>')
		if err != nil {
			return 0, false, err
		}
		id := rd.Alphabet.Intern(tag)
		rd.Buf.Add(id)
		return id, false, nil

	case '[':
		c2, ok2 := rd.getc()
		if ok2 && c2 == '[' {
			if rd.CollectWBlanks {
				wb, err := rd.readWblank()
				if err != nil {
					return 0, false, err
				}
				rd.WBlanks.Push(wb)
				return SymbolID(' '), true, nil
			}
			activated, err := rd.wblankPostGen(w)
			if err != nil {
				return 0, false, err
			}
			if activated {
				return SymbolID('~'), false, nil
			}
			return SymbolID(' '), true, nil
		}
		if ok2 {
			rd.ungetc(c2)
		}
		block, err := rd.readFullBlock('[', ']')
		if err != nil {
			return 0, false, err
		}
		rd.Blanks.Push(block)
		rd.Buf.Add(SymbolID(' '))
		return SymbolID(' '), false, nil

	case '\\':
		c2, ok2 := rd.getc()
		if !ok2 {
			return 0, false, streamError()
		}
		rd.Buf.Add(SymbolID(c2))
		return SymbolID(c2), false, nil

	default:
		rd.Buf.Add(SymbolID(c))
		return SymbolID(c), false, nil
	}
}

// wblankPostGen implements spec.md §4.H's folding: it reads a wordbound
// blank and, if immediately followed by "~", pushes it to WBlanks and
// reports activation (the caller should return the "~" symbol) instead of
// writing it straight through.
func (rd *Reader) wblankPostGen(w io.Writer) (bool, error) {
	out := []rune{'[', '['}
	for {
		c, ok := rd.getc()
		if !ok {
			return false, streamError()
		}
		out = append(out, c)
		if c == '\\' {
			c2, ok2 := rd.getc()
			if !ok2 {
				return false, streamError()
			}
			out = append(out, c2)
			continue
		}
		if c != ']' {
			continue
		}
		c2, ok2 := rd.getc()
		if !ok2 {
			return false, streamError()
		}
		out = append(out, c2)
		if c2 != ']' {
			continue
		}
		n := len(out)
		if n >= 5 && out[n-5] == '[' && out[n-4] == '[' && out[n-3] == '/' {
			io.WriteString(w, string(out))
			return false, nil
		}
		c3, ok3 := rd.getc()
		if ok3 && c3 == '~' {
			rd.WBlanks.Push(string(out))
			return true, nil
		}
		if ok3 {
			rd.ungetc(c3)
		}
		io.WriteString(w, string(out))
		return false, nil
	}
}
