package lttproc

import "strings"

// CompoundAnalyzer decomposes an otherwise-unknown word into a sequence of
// '+'-joined segments, each independently recognized by the loaded
// transducers (spec.md §4.I). It is optional: a dictionary that never
// defines the conventional compound control symbols still analyzes fine,
// just without this fallback.
//
// Grounded on fst_processor.cc's compound-mode fields (compoundOnlyLSym,
// compoundRSym, compound_max_elements) and the restartFinals/pruneCompounds
// machinery of stateset.go.
type CompoundAnalyzer struct {
	root       *Root
	chars      *CharSets
	cfg        *Config
	onlyL      SymbolID // 0 if not found: pruning is skipped, not an error
	plusR      SymbolID // the compound-boundary marker, always '+'
	compoundR  SymbolID // the "right-hand-recognized" final marker; 0 if not found
}

// compoundOnlyLCandidates and compoundRCandidates list the conventional multichar-symbol
// spellings probed at init time, most to least specific, per spec.md §4.I.
var compoundOnlyLCandidates = []string{"<:compound:only-L>", "<@co:only-L>", "<compound-only-L>"}
var compoundRCandidates = []string{"<:compound:R>", "<@co:R>", "<compound-R>"}

// NewCompoundAnalyzer probes the alphabet for the control symbols and
// returns a ready analyzer. The probe never fails: an unresolved symbol
// simply leaves the corresponding forbidden-symbol pruning disabled.
func NewCompoundAnalyzer(root *Root, chars *CharSets, cfg *Config) *CompoundAnalyzer {
	c := &CompoundAnalyzer{root: root, chars: chars, cfg: cfg, plusR: root.Alphabet.Intern("+")}
	c.onlyL = firstKnownSymbol(root.Alphabet, compoundOnlyLCandidates)
	c.compoundR = firstKnownSymbol(root.Alphabet, compoundRCandidates)
	if !cfg.ShowControlSymbols {
		if c.onlyL != 0 {
			root.Alphabet.setSymbol(c.onlyL, "")
		}
		if c.compoundR != 0 {
			root.Alphabet.setSymbol(c.compoundR, "")
		}
	}
	return c
}

func firstKnownSymbol(alphabet *Alphabet, candidates []string) SymbolID {
	for _, name := range candidates {
		if ids := alphabet.TagsWithPrefix(name); len(ids) > 0 {
			return ids[0]
		}
	}
	return 0
}

// Decompose implements spec.md §4.I's algorithm. ok is false when the word
// has no compound decomposition at all (including the MAX_COMBINATIONS
// blowup case, which is swallowed as "no result" rather than propagated).
func (c *CompoundAnalyzer) Decompose(word string, caseSensitive bool) (string, bool) {
	runes := []rune(word)
	if len(runes) == 0 {
		return "", false
	}

	ss := NewStateSet(c.root)
	allFinals := c.root.allFinals

	for i, r := range runes {
		ss.StepCase(r, caseSensitive)
		if ss.Size() > MaxCombinations {
			return "", false
		}
		if i < len(runes)-1 {
			ss.RestartFinals(allFinals, c.onlyL, c.plusR)
		}
		if ss.Size() == 0 {
			return "", false
		}
	}

	if c.compoundR != 0 {
		ss.PruneCompounds(c.compoundR, c.cfg.CompoundMaxElements)
	}
	if ss.Size() == 0 {
		return "", false
	}

	uppercase, firstupper := false, false
	if !c.cfg.DictionaryCase {
		firstupper = isRuneUpper(runes[0])
		uppercase = firstupper && isRuneUpper(runes[len(runes)-1])
	}

	out := ss.FilterFinals(allFinals, c.chars, c.cfg.DisplayWeightsMode, c.cfg.MaxAnalyses, c.cfg.MaxWeightClasses, uppercase, firstupper)
	if out == "" {
		return "", false
	}
	return strings.TrimPrefix(out, "/"), true
}

func isRuneUpper(r rune) bool { return r != towlower(r) }
