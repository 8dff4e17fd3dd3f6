package lttproc

// Test helpers for building toy transducers by hand, without going through
// LoadBinary. Package-internal (package lttproc) so tests can reach the
// lowercase constructors transducer.go exposes for the loader.

// word adds a simple chain of transitions spelling out in -> out starting
// from t's initial node, returning the final node id. Each rune of in/out
// becomes one transition labelled (rune(in[i]), rune(out[i])); the shorter
// side is padded with epsilon (0).
func word(t *Transducer, in, out string) NodeID {
	return wordFrom(t, t.Initial, in, out)
}

// wordFrom is word but starting from an arbitrary node, so callers can chain
// several words into a shared prefix or splice in a tag.
func wordFrom(t *Transducer, from NodeID, in, out string) NodeID {
	ir := []rune(in)
	or := []rune(out)
	n := len(ir)
	if len(or) > n {
		n = len(or)
	}
	cur := from
	for i := 0; i < n; i++ {
		var inSym, outSym SymbolID
		if i < len(ir) {
			inSym = SymbolID(ir[i])
		}
		if i < len(or) {
			outSym = SymbolID(or[i])
		}
		next := t.addNode()
		t.addTransition(cur, Transition{In: inSym, Out: outSym, Target: next})
		cur = next
	}
	return cur
}

// tagEdge adds one epsilon-in / tag-out transition from 'from', interning
// tag in alphabet, and returns the new node.
func tagEdge(t *Transducer, alphabet *Alphabet, from NodeID, tag string) NodeID {
	next := t.addNode()
	t.addTransition(from, Transition{In: 0, Out: alphabet.Intern(tag), Target: next})
	return next
}

// newToyRoot builds a single "@standard"-class transducer named name and
// returns it alongside its Root and Alphabet, ready for a caller to add
// words/tags to before calling NewRoot-dependent methods. finalizeToyRoot must be
// called once the caller is done adding nodes/transitions, to populate the
// finals maps used by IsFinalIn/FilterFinals.
func newToyRoot(name string) (*Root, *Alphabet, *Transducer) {
	alphabet := NewAlphabet()
	t := newTransducer(name, Standard)
	transducers := map[string]*Transducer{name: t}
	order := []string{name}
	root := NewRoot(alphabet, transducers, order)
	return root, alphabet, t
}

// finalizeToyRoot rebuilds root's finals classification maps after the
// caller has mutated t.Finals directly (NewRoot snapshots them once at
// construction time).
func finalizeToyRoot(alphabet *Alphabet, t *Transducer) *Root {
	return NewRoot(alphabet, map[string]*Transducer{t.Name: t}, []string{t.Name})
}
