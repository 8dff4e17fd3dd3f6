package lttproc

import (
	"io"
	"strings"
)

// BilingualDriver runs the bilingual-transfer driver of spec.md §4.F: it
// reads "^sf$"-framed source analyses, steps the loaded bidix in its
// analysis-to-target direction, and tracks a trailing queue of symbols
// that arrive after the last final so they can be re-attached to the
// chosen target via compose.
//
// Grounded on fst_processor.cc's bilingual()/biltrans family.
type BilingualDriver struct {
	root     *Root
	alphabet *Alphabet
	chars    *CharSets
	cfg      *Config
}

// NewBilingualDriver builds a driver over root.
func NewBilingualDriver(root *Root, chars *CharSets, cfg *Config) *BilingualDriver {
	return &BilingualDriver{root: root, alphabet: root.Alphabet, chars: chars, cfg: cfg}
}

// Bilingual consumes one "^sf$" record from rd and writes its rendering to
// w, returning false once rd is exhausted.
func (d *BilingualDriver) Bilingual(rd *Reader, w io.Writer) (bool, error) {
	v, err := rd.ReadGeneration(w)
	if err != nil {
		return false, err
	}
	if v == symEOF {
		return false, nil
	}

	out, _, more, err := d.biltransCollect(rd, v)
	if err != nil {
		return false, err
	}
	io.WriteString(w, out)
	return more, nil
}

// biltransCollect runs the per-token loop shared by Bilingual and the
// single-word BiltransFull/BiltransWithQueue entry points. first is the
// symbol already read by the caller as the token's opening character. It
// returns the rendered record, the length of the leftover tag queue at the
// moment the result was fixed, and whether rd has more frames pending.
func (d *BilingualDriver) biltransCollect(rd *Reader, first SymbolID) (string, int, bool, error) {
	ss := NewReverseStateSet(d.root)
	var sf []rune
	var surface []rune
	var queue []SymbolID
	var result string
	haveResult := false
	pastSlash := false

	step := func(v SymbolID) {
		ss.Step(v)
		sf = append(sf, []rune(d.alphabet.Lookup(v))...)
		if !pastSlash {
			if v == SymbolID('/') {
				pastSlash = true
			} else {
				surface = append(surface, []rune(d.alphabet.Lookup(v))...)
			}
		}
		if ss.IsFinalIn(d.root.allFinals) {
			uppercase, firstupper := false, false
			if !d.cfg.DictionaryCase && len(sf) > 0 {
				firstupper = sf[0] != towlower(sf[0])
				uppercase = firstupper && sf[len(sf)-1] != towlower(sf[len(sf)-1])
			}
			result = strings.TrimPrefix(ss.FilterFinals(d.root.allFinals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper), "/")
			haveResult = true
			queue = queue[:0]
		} else {
			queue = append(queue, v)
		}
	}

	v := first
	var err error
	more := true
	for {
		if v == symEOF || v == SymbolID('$') {
			more = v != symEOF
			break
		}
		step(v)
		v, err = rd.ReadGeneration(io.Discard)
		if err != nil {
			return "", 0, false, err
		}
	}
	queueLen := len(queue)

	sfStr := string(sf)
	if strings.HasPrefix(sfStr, "*") {
		stripped := sfStr
		if !d.cfg.ShowControlSymbols {
			stripped = sfStr[1:]
		}
		return "^" + sfStr + "/*" + stripped + "$", queueLen, more, nil
	}

	if haveResult {
		return "^" + sfStr + "/" + compose(result, queue, d.alphabet) + "$", queueLen, more, nil
	}

	if d.cfg.BiltransSurfaceForms {
		surfStr := string(surface)
		return "^" + surfStr + "/@" + surfStr + "$", queueLen, more, nil
	}
	return "^" + sfStr + "/@" + sfStr + "$", queueLen, more, nil
}

// compose splices queue's trailing tag symbols into result: before every
// "/" that separates target alternatives and again at the tail, so a tag
// seen after the last matched final still reaches every target reading
// (spec.md §4.F).
func compose(result string, queue []SymbolID, alphabet *Alphabet) string {
	if len(queue) == 0 {
		return result
	}
	var tail strings.Builder
	for _, q := range queue {
		tail.WriteString(alphabet.Lookup(q))
	}
	tailStr := tail.String()

	return strings.ReplaceAll(result, "/", tailStr+"/") + tailStr
}

// Biltrans runs the single-word variant: word must already be framed as
// "sf" (no surrounding ^...$); it returns the same rendering Bilingual
// would produce for that one token.
func (d *BilingualDriver) Biltrans(word string) (string, error) {
	out, queueLen, err := d.BiltransWithQueue(word)
	_ = queueLen
	return out, err
}

// BiltransWithQueue is Biltrans plus the length of the leftover tag queue
// at the moment the result was fixed (spec.md §4.F).
func (d *BilingualDriver) BiltransWithQueue(word string) (string, int, error) {
	if word == "" {
		return "^/@$", 0, nil
	}
	rd := NewReader(strings.NewReader(word), d.alphabet, d.chars)
	rd.OutOfWord = false
	first, err := rd.ReadGeneration(io.Discard)
	if err != nil {
		return "", 0, err
	}
	out, queueLen, _, err := d.biltransCollect(rd, first)
	return out, queueLen, err
}

// BiltransWithoutQueue discards the queue length BiltransWithQueue reports.
func (d *BilingualDriver) BiltransWithoutQueue(word string) (string, error) {
	out, _, err := d.BiltransWithQueue(word)
	return out, err
}

// BiltransFull is the same single-word algorithm with the bidix swapped
// for a full-form (unrestricted) transducer: callers pass a root already
// built over the full-form transducer. It runs exactly Biltrans; no
// separate degenerate-window check (start_point < end_point - 3 in the
// original) is applied.
func (d *BilingualDriver) BiltransFull(word string) (string, error) {
	return d.Biltrans(word)
}
