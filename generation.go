package lttproc

import (
	"io"
	"strings"
	"unicode"
)

// GenerationMode selects how generation.go renders a token that the loaded
// transducer doesn't recognize (spec.md §4.G).
type GenerationMode int

const (
	GenClean GenerationMode = iota
	GenUnknown
	GenAll
	GenTagged
	GenTaggedNM
)

// GenerationDriver runs the generation-direction driver of spec.md §4.G: it
// reads "^...$"-framed tokens via Reader.ReadGeneration, steps the state set
// in the reverse orientation (the loaded transducer's upper/lower roles are
// swapped relative to analysis), and renders according to Mode.
//
// Grounded on fst_processor.cc's generation()/readGeneration family.
type GenerationDriver struct {
	root        *Root
	alphabet    *Alphabet
	chars       *CharSets
	cfg         *Config
	Mode        GenerationMode
	CarefulCase bool
}

// NewGenerationDriver builds a driver over root with the given mode.
func NewGenerationDriver(root *Root, chars *CharSets, cfg *Config, mode GenerationMode) *GenerationDriver {
	return &GenerationDriver{root: root, alphabet: root.Alphabet, chars: chars, cfg: cfg, Mode: mode}
}

func (d *GenerationDriver) stepToken(ss *StateSet, v SymbolID) {
	r := rune(v)
	if d.alphabet.IsTagID(v) || !unicode.IsLetter(r) {
		ss.Step(v)
		return
	}
	if !unicode.IsUpper(r) || d.cfg.CaseSensitive {
		ss.Step(v)
		return
	}
	lo := SymbolID(towlower(r))
	if d.CarefulCase {
		ss.StepCareful(v, lo)
		return
	}
	ss.StepPair(v, lo)
}

// Generate consumes one "^token$" record from rd and writes its rendering
// to w, returning false once rd is exhausted. ReadGeneration itself writes
// any out-of-frame text (and the literal bracket blocks inside a frame)
// straight to w as it consumes the "^" marker, so Generate only ever sees
// the symbols belonging to the token's own text.
func (d *GenerationDriver) Generate(rd *Reader, w io.Writer) (bool, error) {
	v, err := rd.ReadGeneration(w)
	if err != nil {
		return false, err
	}
	if v == symEOF {
		return false, nil
	}

	if v == SymbolID('=') {
		io.WriteString(w, "=")
		v, err = rd.ReadGeneration(w)
		if err != nil {
			return false, err
		}
	}

	ss := NewReverseStateSet(d.root)
	var token []rune
	for v != symEOF && v != SymbolID('$') {
		token = append(token, []rune(d.alphabet.Lookup(v))...)
		d.stepToken(ss, v)
		v, err = rd.ReadGeneration(w)
		if err != nil {
			return false, err
		}
	}

	io.WriteString(w, d.render(ss, string(token)))
	return v != symEOF, nil
}

// render dispatches on tokenStr's leading marker and on whether ss reached
// a final, following the table in spec.md §4.G.
func (d *GenerationDriver) render(ss *StateSet, tokenStr string) string {
	switch {
	case strings.HasPrefix(tokenStr, "*") || strings.HasPrefix(tokenStr, "%"):
		return d.renderStar(tokenStr)
	case strings.HasPrefix(tokenStr, "@"):
		return d.renderAt(tokenStr)
	default:
		return d.renderPlain(ss, tokenStr)
	}
}

func (d *GenerationDriver) renderStar(tokenStr string) string {
	stripped := tokenStr[1:]
	switch d.Mode {
	case GenClean:
		return stripped
	case GenUnknown, GenAll, GenTagged:
		return tokenStr
	case GenTaggedNM:
		return "^" + stripTags(stripped) + "/#" + stripTags(stripped) + "-tagged$"
	default:
		return stripped
	}
}

func (d *GenerationDriver) renderAt(tokenStr string) string {
	stripped := tokenStr[1:]
	switch d.Mode {
	case GenClean, GenUnknown, GenTagged:
		return stripTags(stripped)
	case GenAll:
		return tokenStr
	case GenTaggedNM:
		return "^" + tokenStr + "/#" + stripTags(stripped) + "-tagged$"
	default:
		return stripTags(stripped)
	}
}

// caseFlags implements spec.md §4.D's "Case determination for filtered
// finals" over the token's tag-stripped surface, mirroring AnalysisDriver's
// caseFlags: firstupper = iswupper(sf[0]), uppercase = firstupper ∧
// iswupper(sf[-1]); both forced false under DictionaryCase.
func (d *GenerationDriver) caseFlags(tokenStr string) (uppercase, firstupper bool) {
	if d.cfg.DictionaryCase {
		return false, false
	}
	sf := []rune(stripTags(tokenStr))
	if len(sf) == 0 {
		return false, false
	}
	firstupper = unicode.IsUpper(sf[0])
	uppercase = firstupper && unicode.IsUpper(sf[len(sf)-1])
	return uppercase, firstupper
}

func (d *GenerationDriver) renderPlain(ss *StateSet, tokenStr string) string {
	finals := d.root.allFinals
	if ss.IsFinalIn(finals) {
		uppercase, firstupper := d.caseFlags(tokenStr)
		form := ss.FilterFinals(finals, d.chars, d.cfg.DisplayWeightsMode, d.cfg.MaxAnalyses, d.cfg.MaxWeightClasses, uppercase, firstupper)
		form = strings.TrimPrefix(form, "/")
		if d.Mode == GenTagged || d.Mode == GenTaggedNM {
			return "^" + form + "/" + stripTags(tokenStr) + "-tagged$"
		}
		return form
	}

	stripped := stripTags(tokenStr)
	switch d.Mode {
	case GenClean:
		return stripped
	case GenUnknown, GenTagged:
		return "#" + stripped + "-stripped"
	case GenAll:
		return "#" + tokenStr
	case GenTaggedNM:
		return "^" + tokenStr + "/#" + stripped + "-tagged$"
	default:
		return stripped
	}
}

// stripTags removes every "<...>" run from s, used by the '@'/unmatched
// rendering rules of spec.md §4.G.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
