package lttproc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/emirpasic/gods/sets/hashset"
	pool "github.com/jolestar/go-commons-pool"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func towlower(r rune) rune {
	s := lowerCaser.String(string(r))
	for _, rr := range s {
		return rr
	}
	return r
}

// Step is one (input, output, weight) edge traversed by a live path.
type Step struct {
	In     SymbolID
	Out    SymbolID
	Weight float64
}

// statePath is one element of the (q, trace) bag described in spec.md §3.
type statePath struct {
	Transducer string
	Node       NodeID
	Trace      []Step
	Weight     float64
}

func (p statePath) key() transKey { return transKey{p.Transducer, p.Node} }

// MaxCombinations bounds the state-set size during compound analysis only
// (spec.md §3). Exceeding it makes Decompose report no decomposition; no
// error is returned.
const MaxCombinations = 32767

// StateSet is the subset-simulation bag of live (state, trace) pairs that
// advances as the driver consumes one symbol at a time (spec.md §4.E).
//
// Every named transducer's arcs carry one fixed (In, Out) pair, but
// spec.md §3 has the same loaded arena walked in two directions:
// analysis/compound matches on In and emits Out, while generation/
// bilingual/postgeneration match on Out and emit In ("the same Nodes
// arena is interpreted in either direction by swapping which half of a
// paired label is treated as input", transducer.go). Reverse selects
// which half is live for this StateSet's whole lifetime.
type StateSet struct {
	root    *Root
	paths   []statePath
	Reverse bool

	tracePool *pool.ObjectPool
	poolCtx   context.Context
}

// NewStateSet returns the epsilon-closure of the union of every named
// transducer's initial state — the "root" synthetic node of spec.md §3 —
// walked in the analysis direction (match In, emit Out).
func NewStateSet(root *Root) *StateSet {
	return newStateSet(root, false)
}

// NewReverseStateSet is NewStateSet walked in the generation direction
// (match Out, emit In), for generation.go/bilingual.go/postgen.go.
func NewReverseStateSet(root *Root) *StateSet {
	return newStateSet(root, true)
}

func newStateSet(root *Root, reverse bool) *StateSet {
	s := &StateSet{root: root, Reverse: reverse, poolCtx: context.Background()}
	factory := pool.NewPooledObjectFactorySimple(func(context.Context) (interface{}, error) {
		return make([]Step, 0, 8), nil
	})
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1
	config.BlockWhenExhausted = false
	s.tracePool = pool.NewObjectPool(s.poolCtx, factory, config)

	for _, name := range root.Order {
		t := root.Transducers[name]
		s.paths = append(s.paths, statePath{Transducer: name, Node: t.Initial})
	}
	s.closeEpsilon()
	return s
}

// Reset returns the StateSet to the initial union of every transducer's
// start state, reusing the pool rather than reallocating it.
func (s *StateSet) Reset() {
	for _, p := range s.paths {
		s.releaseTrace(p.Trace)
	}
	s.paths = s.paths[:0]
	for _, name := range s.root.Order {
		t := s.root.Transducers[name]
		s.paths = append(s.paths, statePath{Transducer: name, Node: t.Initial})
	}
	s.closeEpsilon()
}

// Size reports the number of live paths.
func (s *StateSet) Size() int { return len(s.paths) }

func (s *StateSet) borrowTrace(n int) []Step {
	obj, err := s.tracePool.BorrowObject(s.poolCtx)
	if err != nil {
		return make([]Step, n)
	}
	buf, ok := obj.([]Step)
	if !ok || cap(buf) < n {
		return make([]Step, n)
	}
	return buf[:n]
}

func (s *StateSet) releaseTrace(buf []Step) {
	if buf == nil {
		return
	}
	s.tracePool.ReturnObject(s.poolCtx, buf[:0])
}

// matchLabel and emitLabel return the fields of tr that play the role of
// matched-input and emitted-output under s's current direction.
func (s *StateSet) matchLabel(tr Transition) SymbolID {
	if s.Reverse {
		return tr.Out
	}
	return tr.In
}

func (s *StateSet) emitLabel(tr Transition) SymbolID {
	if s.Reverse {
		return tr.In
	}
	return tr.Out
}

// step applies one input symbol to every live path, following matching
// transitions, then closes over epsilon. Matches spec.md §4.E's step(v).
func (s *StateSet) step(v SymbolID) {
	next := make([]statePath, 0, len(s.paths))
	for _, p := range s.paths {
		t := s.root.Transducers[p.Transducer]
		for _, tr := range t.Nodes[p.Node].Out {
			if s.matchLabel(tr) != v {
				continue
			}
			buf := s.borrowTrace(len(p.Trace) + 1)
			copy(buf, p.Trace)
			buf[len(p.Trace)] = Step{In: v, Out: s.emitLabel(tr), Weight: tr.Weight}
			next = append(next, statePath{Transducer: p.Transducer, Node: tr.Target, Trace: buf, Weight: p.Weight + tr.Weight})
		}
		s.releaseTrace(p.Trace)
	}
	s.paths = next
	s.closeEpsilon()
	s.dedupe()
}

// Step advances the state set via v alone (spec.md §4.E, step(v)).
func (s *StateSet) Step(v SymbolID) { s.step(v) }

// StepPair tries both v and alt, unioning the results (spec.md §4.E,
// step(v, v')) — used for the case-insensitive double-step.
func (s *StateSet) StepPair(v, alt SymbolID) {
	if alt == v {
		s.step(v)
		return
	}
	saved := s.clonePaths()
	s.step(v)
	viaV := s.paths
	s.paths = saved
	s.step(alt)
	s.paths = append(s.paths, viaV...)
	s.dedupe()
}

// StepCareful tries v first and only falls back to alt if nothing matched
// (spec.md §4.E, step_careful) — used by generation's carefulcase mode.
func (s *StateSet) StepCareful(v, alt SymbolID) {
	saved := s.clonePaths()
	s.step(v)
	if len(s.paths) > 0 {
		for _, p := range saved {
			s.releaseTrace(p.Trace)
		}
		return
	}
	s.paths = saved
	s.step(alt)
}

// StepSet tries every symbol in alts, unioning all results. Used for
// the restore-chars expansion of spec.md §4.D rule 3.
func (s *StateSet) StepSet(alts []SymbolID) {
	saved := s.clonePaths()
	var union []statePath
	for i, a := range alts {
		if i > 0 {
			s.paths = s.clonePathsFrom(saved)
		}
		s.step(a)
		union = append(union, s.paths...)
		if i < len(alts)-1 {
			s.paths = nil
		}
	}
	s.paths = union
	for _, p := range saved {
		s.releaseTrace(p.Trace)
	}
	s.dedupe()
}

// StepCase is the compound analyzer's per-character step (spec.md §4.I
// step 2a): case-folds like Step/StepPair based on caseSensitive.
func (s *StateSet) StepCase(v rune, caseSensitive bool) {
	if caseSensitive || !unicode.IsUpper(v) {
		s.Step(SymbolID(v))
	} else {
		s.StepPair(SymbolID(v), SymbolID(towlower(v)))
	}
}

// closeEpsilon repeatedly follows transitions whose matched side is epsilon
// (matchLabel(tr) == 0), bounding the work with a visited set to stay
// correct in the presence of epsilon cycles (the loader performs no
// epsilon-freeness check, so such cycles can reach this function). A transition epsilon on
// its matched side can still emit a real symbol on its other side — that is
// how a tag like "<n>" reaches a final node with no extra character
// consumed — so only the matched side, not both sides, gates traversal.
func (s *StateSet) closeEpsilon() {
	seen := hashset.New()
	queue := append([]statePath{}, s.paths...)
	out := make([]statePath, 0, len(s.paths))
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		k := fmt.Sprintf("%s#%d", p.Transducer, p.Node)
		if seen.Contains(k) {
			continue
		}
		seen.Add(k)
		out = append(out, p)
		t := s.root.Transducers[p.Transducer]
		for _, tr := range t.Nodes[p.Node].Out {
			if s.matchLabel(tr) != 0 {
				continue
			}
			buf := s.borrowTrace(len(p.Trace) + 1)
			copy(buf, p.Trace)
			buf[len(p.Trace)] = Step{In: 0, Out: s.emitLabel(tr), Weight: tr.Weight}
			queue = append(queue, statePath{Transducer: p.Transducer, Node: tr.Target, Trace: buf, Weight: p.Weight + tr.Weight})
		}
	}
	s.paths = out
}

// dedupe drops duplicate (transducer,node) pairs, keeping the lower-weight
// trace (spec.md §3: "Duplicate q with worse weight may be pruned").
func (s *StateSet) dedupe() {
	best := make(map[transKey]int, len(s.paths))
	out := make([]statePath, 0, len(s.paths))
	for _, p := range s.paths {
		k := p.key()
		if idx, ok := best[k]; ok {
			if p.Weight < out[idx].Weight {
				s.releaseTrace(out[idx].Trace)
				out[idx] = p
			} else {
				s.releaseTrace(p.Trace)
			}
			continue
		}
		best[k] = len(out)
		out = append(out, p)
	}
	s.paths = out
}

func (s *StateSet) clonePaths() []statePath {
	out := make([]statePath, len(s.paths))
	for i, p := range s.paths {
		buf := s.borrowTrace(len(p.Trace))
		copy(buf, p.Trace)
		out[i] = statePath{Transducer: p.Transducer, Node: p.Node, Trace: buf, Weight: p.Weight}
	}
	return out
}

func (s *StateSet) clonePathsFrom(src []statePath) []statePath {
	out := make([]statePath, len(src))
	for i, p := range src {
		buf := s.borrowTrace(len(p.Trace))
		copy(buf, p.Trace)
		out[i] = statePath{Transducer: p.Transducer, Node: p.Node, Trace: buf, Weight: p.Weight}
	}
	return out
}

// IsFinalIn reports whether any live path lands in a node the given
// finals map (by transducer+node key) classifies as final.
func (s *StateSet) IsFinalIn(finals map[transKey]float64) bool {
	for _, p := range s.paths {
		if _, ok := finals[p.key()]; ok {
			return true
		}
	}
	return false
}

// candidate is one completed analysis path ready for rendering.
type candidate struct {
	form   string
	weight float64
}

// FilterFinals renders every live path whose (transducer,node) is final in
// finals into a "/form<W:...>" string, sorted by ascending weight, capped
// at maxAnalyses entries and maxWeightClasses distinct weight values
// (spec.md §4.E, filterFinals). delim defaults to '/'.
func (s *StateSet) FilterFinals(finals map[transKey]float64, chars *CharSets, displayWeights bool, maxAnalyses, maxWeightClasses int, uppercase, firstupper bool) string {
	return s.filterFinalsDelim(finals, chars, displayWeights, maxAnalyses, maxWeightClasses, uppercase, firstupper, '/')
}

func (s *StateSet) filterFinalsDelim(finals map[transKey]float64, chars *CharSets, displayWeights bool, maxAnalyses, maxWeightClasses int, uppercase, firstupper bool, delim rune) string {
	var cands []candidate
	for _, p := range s.paths {
		w, ok := finals[p.key()]
		if !ok {
			continue
		}
		form := renderTrace(p.Trace, s.root.Alphabet, chars, uppercase, firstupper)
		total := p.Weight + w
		if displayWeights {
			form += fmt.Sprintf("<W:%.4f>", total)
		}
		cands = append(cands, candidate{form: form, weight: total})
	}
	if len(cands) == 0 {
		return ""
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].weight < cands[j].weight })

	if maxWeightClasses > 0 {
		classes := 0
		var lastWeight float64
		seenFirst := false
		limit := len(cands)
		for i, c := range cands {
			if !seenFirst || c.weight != lastWeight {
				classes++
				lastWeight = c.weight
				seenFirst = true
			}
			if classes > maxWeightClasses {
				limit = i
				break
			}
		}
		cands = cands[:limit]
	}
	if maxAnalyses > 0 && len(cands) > maxAnalyses {
		cands = cands[:maxAnalyses]
	}

	var b strings.Builder
	for _, c := range cands {
		b.WriteRune(delim)
		b.WriteString(c.form)
	}
	return b.String()
}

// FilterFinalsSAO is filterFinals's stripped-down SAO sibling (spec.md's
// supplemented shallow-analysis-output mode): no weights, no multiple-
// analysis delimiter, just the single lowest-weight final rendered plain.
func (s *StateSet) FilterFinalsSAO(finals map[transKey]float64, chars *CharSets, uppercase, firstupper bool) string {
	best := ""
	bestWeight := 0.0
	haveBest := false
	for _, p := range s.paths {
		w, ok := finals[p.key()]
		if !ok {
			continue
		}
		total := p.Weight + w
		if haveBest && total >= bestWeight {
			continue
		}
		best = renderTrace(p.Trace, s.root.Alphabet, chars, uppercase, firstupper)
		bestWeight = total
		haveBest = true
	}
	return best
}

// renderTrace turns a path's output labels into the escaped, cased lexical
// form string (spec.md §4.E): tags render literally, letters get escaped
// if needed and recased per uppercase/firstupper.
func renderTrace(trace []Step, alphabet *Alphabet, chars *CharSets, uppercase, firstupper bool) string {
	var letters []rune
	var b strings.Builder
	firstLetterIdx := -1

	flushLetters := func() {
		if len(letters) == 0 {
			return
		}
		s := string(letters)
		switch {
		case uppercase:
			s = upperCaser.String(s)
		case firstupper && firstLetterIdx < 0:
			r := []rune(s)
			r[0] = unicode.ToUpper(r[0])
			s = string(r)
			firstLetterIdx = 0
		}
		b.WriteString(s)
		letters = letters[:0]
	}

	for _, st := range trace {
		if st.Out == 0 {
			continue
		}
		str := alphabet.Lookup(st.Out)
		if alphabet.IsTagID(st.Out) {
			flushLetters()
			b.WriteString(str)
			continue
		}
		r := []rune(str)
		if len(r) != 1 {
			flushLetters()
			b.WriteString(str)
			continue
		}
		if chars.IsEscaped(r[0]) {
			flushLetters()
			b.WriteByte('\\')
			b.WriteRune(r[0])
			continue
		}
		letters = append(letters, r[0])
	}
	flushLetters()
	return b.String()
}

// PruneStatesWithForbiddenSymbol drops every path whose trace contains the
// given symbol id (spec.md §4.E, pruneStatesWithForbiddenSymbol) — used to
// exclude compound-only-L segments from a final compound result.
func (s *StateSet) PruneStatesWithForbiddenSymbol(sym SymbolID) {
	out := make([]statePath, 0, len(s.paths))
	for _, p := range s.paths {
		forbidden := false
		for _, st := range p.Trace {
			if st.In == sym || st.Out == sym {
				forbidden = true
				break
			}
		}
		if forbidden {
			s.releaseTrace(p.Trace)
			continue
		}
		out = append(out, p)
	}
	s.paths = out
}

// PruneCompounds retains only paths that contain at most maxElems
// compound-boundary symbols (compoundR) and either contain none or
// terminate right after one (spec.md §4.E, pruneCompounds).
func (s *StateSet) PruneCompounds(compoundR SymbolID, maxElems int) {
	out := make([]statePath, 0, len(s.paths))
	for _, p := range s.paths {
		boundaries := 0
		lastWasBoundary := len(p.Trace) == 0
		for _, st := range p.Trace {
			if st.Out == compoundR {
				boundaries++
				lastWasBoundary = true
			} else {
				lastWasBoundary = false
			}
		}
		if boundaries <= maxElems && (boundaries == 0 || lastWasBoundary) {
			out = append(out, p)
			continue
		}
		s.releaseTrace(p.Trace)
	}
	s.paths = out
}

// RestartFinals splices an epsilon edge from every currently-final path
// (not marked via onlyL) back to each transducer's initial state, emitting
// plusSym on the way — the mechanism compound.go uses to chain word+word+…
// (spec.md §4.E, restartFinals).
func (s *StateSet) RestartFinals(finals map[transKey]float64, onlyL SymbolID, plusSym SymbolID) {
	var restarted []statePath
	for _, p := range s.paths {
		if _, ok := finals[p.key()]; !ok {
			continue
		}
		if onlyL != 0 {
			forbidden := false
			for _, st := range p.Trace {
				if st.Out == onlyL {
					forbidden = true
					break
				}
			}
			if forbidden {
				continue
			}
		}
		for _, name := range s.root.Order {
			t := s.root.Transducers[name]
			buf := s.borrowTrace(len(p.Trace) + 1)
			copy(buf, p.Trace)
			buf[len(p.Trace)] = Step{In: 0, Out: plusSym, Weight: 0}
			restarted = append(restarted, statePath{Transducer: name, Node: t.Initial, Trace: buf, Weight: p.Weight})
		}
	}
	s.paths = append(s.paths, restarted...)
	s.closeEpsilon()
	s.dedupe()
}
