package lttproc

import "strings"

// NodeID indexes into a Transducer's (or the Root's) Nodes arena. Replacing
// pointer-linked states with dense integer ids removes the cyclic ownership
// between the Root's epsilon edges and each named transducer's initial
// state (see DESIGN NOTES, "pointer-based node graphs → arena + index").
type NodeID int32

// Transition is one outgoing edge of a Node: consume inLabel, emit outLabel,
// accrue weight, move to Target.
type Transition struct {
	In     SymbolID
	Out    SymbolID
	Weight float64
	Target NodeID
}

// Node is one state of a transducer graph.
type Node struct {
	Out []Transition
}

// FinalClass is the priority class of a named transducer's finals, decoded
// from its name suffix.
type FinalClass int

const (
	// Standard fires only when lookahead is non-alphabetic (word boundary commit).
	Standard FinalClass = iota
	// Inconditional fires always, bypassing alphabetic lookahead.
	Inconditional
	// Postblank inserts a space after the token and fires always.
	Postblank
	// Preblank inserts a space before the token and fires always.
	Preblank
)

// finalClassSuffix maps a transducer name suffix to its priority class.
var finalClassSuffix = map[string]FinalClass{
	"@inconditional": Inconditional,
	"@postblank":     Postblank,
	"@preblank":      Preblank,
	"@standard":      Standard,
}

// ClassifyFinalSuffix resolves the priority class encoded in a transducer
// name, returning TransducerNameUnsupported for anything else (spec.md
// §3's "Unrecognized suffix is fatal at init").
func ClassifyFinalSuffix(name string) (FinalClass, error) {
	for suffix, class := range finalClassSuffix {
		if strings.HasSuffix(name, suffix) {
			return class, nil
		}
	}
	return Standard, newError(TransducerNameUnsupported, "unrecognized finals suffix in "+name)
}

// Transducer is one named (Q, q0, delta, F) component of the loaded binary.
// Read-only after load; the same Nodes arena is interpreted in either
// direction by swapping which half of a paired label is treated as input.
type Transducer struct {
	Name    string
	Class   FinalClass
	Nodes   []Node
	Initial NodeID
	// Finals maps an accepting node to its accumulated weight.
	Finals map[NodeID]float64
}

func newTransducer(name string, class FinalClass) *Transducer {
	return &Transducer{
		Name:   name,
		Class:  class,
		Nodes:  []Node{{}}, // node 0 exists from the start and is the default initial state
		Finals: make(map[NodeID]float64),
	}
}

// addNode appends an empty node and returns its id.
func (t *Transducer) addNode() NodeID {
	t.Nodes = append(t.Nodes, Node{})
	return NodeID(len(t.Nodes) - 1)
}

// addTransition records an outgoing edge from 'from'.
func (t *Transducer) addTransition(from NodeID, tr Transition) {
	t.Nodes[from].Out = append(t.Nodes[from].Out, tr)
}

// Root is the synthetic initial node with epsilon-transitions to every
// named transducer's initial state. The engine simulates a subset of
// states over this union (spec.md §3, "Root transducer").
type Root struct {
	Alphabet    *Alphabet
	Transducers map[string]*Transducer
	// Order preserves load order for deterministic iteration (filterFinals
	// sort is stable only if candidate discovery order is deterministic).
	Order []string

	// AllFinals, Inconditional, Standard, Postblank, Preblank mirror the
	// original's four classification maps, keyed by (transducer name, node).
	classified map[FinalClass]map[transKey]float64
	allFinals  map[transKey]float64
}

// transKey identifies a node within a specific named transducer, since node
// ids are only unique per-transducer.
type transKey struct {
	Transducer string
	Node       NodeID
}

// NewRoot builds the finals classification maps (spec.md §4.F
// classifyFinals) once, after every named transducer has been loaded.
func NewRoot(alphabet *Alphabet, transducers map[string]*Transducer, order []string) *Root {
	r := &Root{
		Alphabet:    alphabet,
		Transducers: transducers,
		Order:       order,
		classified: map[FinalClass]map[transKey]float64{
			Inconditional: {},
			Standard:      {},
			Postblank:     {},
			Preblank:      {},
		},
		allFinals: map[transKey]float64{},
	}
	for _, name := range order {
		t := transducers[name]
		for node, w := range t.Finals {
			key := transKey{name, node}
			r.classified[t.Class][key] = w
			r.allFinals[key] = w
		}
	}
	return r
}

// IsFinal reports whether node (within transducer name) belongs to the
// classification map for class.
func (r *Root) IsFinal(class FinalClass, name string, node NodeID) (float64, bool) {
	w, ok := r.classified[class][transKey{name, node}]
	return w, ok
}

// IsAnyFinal reports whether node is final in any class.
func (r *Root) IsAnyFinal(name string, node NodeID) (float64, bool) {
	w, ok := r.allFinals[transKey{name, node}]
	return w, ok
}

// Valid implements spec.md §4.J's dictionary-validity check: a dictionary
// is invalid if its initial state is itself final (an empty word would
// always match) or reachable on a space transition straight from initial.
func (r *Root) Valid() error {
	for _, name := range r.Order {
		t := r.Transducers[name]
		if _, ok := r.IsAnyFinal(name, t.Initial); ok {
			return newError(DictionaryInvalid, "initial state of "+name+" is final")
		}
		for _, tr := range t.Nodes[t.Initial].Out {
			if r.Alphabet.Lookup(tr.In) == " " {
				return newError(DictionaryInvalid, "initial state of "+name+" is reachable on space")
			}
		}
	}
	return nil
}
