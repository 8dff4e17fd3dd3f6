package lttproc

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// lttbMagic is Variant A's four-byte header (spec.md §6). Variant B (legacy)
// carries no magic and starts the payload immediately; LoadBinary tells the
// two apart by peeking the first four bytes.
const lttbMagic = "LTTB"

// Feature bits a loaded binary may declare in its uint64 features word.
// Any bit at or above featureUnknown is refused outright (spec.md §6,
// "FST binary with unknown feature bits: fatal with upgrade! message").
const (
	FeatureWeighted uint64 = 1 << iota
	FeatureCompounds
	featureUnknown
)

// LoadBinary reads a compiled LTTB (or legacy unmarked) binary and returns
// the assembled Root plus the alphabetic-letters half of a CharSets ready
// for AddAlphabetic-less use (callers still need to call UseDefaultIgnored
// or ParseICX/ParseRCX themselves per spec.md §6).
//
// Grounded on KorAP-Datok's datok.go ParseDatok (magic check, bufio.Reader
// framing, binary.LittleEndian scalars) adapted to the uvarint payload
// spec.md §6 mandates instead of datok's fixed-width double-array layout.
func LoadBinary(r io.Reader) (*Root, *CharSets, error) {
	br := bufio.NewReader(r)
	chars := NewCharSets()

	head, err := br.Peek(len(lttbMagic))
	if err == nil && string(head) == lttbMagic {
		if _, err := br.Discard(len(lttbMagic)); err != nil {
			return nil, nil, wrapError(BinaryUnsupported, "truncated magic", err)
		}
		var featBuf [8]byte
		if _, err := io.ReadFull(br, featBuf[:]); err != nil {
			return nil, nil, wrapError(BinaryUnsupported, "truncated feature word", err)
		}
		features := binary.LittleEndian.Uint64(featBuf[:])
		if features >= featureUnknown {
			return nil, nil, newError(BinaryUnsupported, "unknown feature bits set, upgrade!")
		}
	}

	letterCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, wrapError(BinaryUnsupported, "truncated letter set", err)
	}
	letters := make([]rune, 0, letterCount)
	for i := uint64(0); i < letterCount; i++ {
		cp, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, nil, wrapError(BinaryUnsupported, "truncated letter set entry", err)
		}
		letters = append(letters, rune(cp))
	}
	chars.AddAlphabetic(letters)

	alphabet := NewAlphabet()
	if err := readAlphabetTable(br, alphabet); err != nil {
		return nil, nil, err
	}

	transducerCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, wrapError(BinaryUnsupported, "truncated transducer count", err)
	}

	transducers := make(map[string]*Transducer, transducerCount)
	order := make([]string, 0, transducerCount)
	for i := uint64(0); i < transducerCount; i++ {
		name, err := readName(br)
		if err != nil {
			return nil, nil, err
		}
		class, err := ClassifyFinalSuffix(name)
		if err != nil {
			return nil, nil, err
		}
		t, err := readTransducerBody(br, name, class)
		if err != nil {
			return nil, nil, err
		}
		transducers[name] = t
		order = append(order, name)
	}

	root := NewRoot(alphabet, transducers, order)
	return root, chars, nil
}

// readAlphabetTable reads the multichar symbol table delegated to Alphabet:
// a uvarint count followed by that many length-prefixed UTF-8 strings,
// interned in file order so ids match the order the compiler assigned them.
func readAlphabetTable(br *bufio.Reader, alphabet *Alphabet) error {
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return wrapError(BinaryUnsupported, "truncated alphabet table", err)
	}
	for i := uint64(0); i < count; i++ {
		n, err := binary.ReadUvarint(br)
		if err != nil {
			return wrapError(BinaryUnsupported, "truncated alphabet entry length", err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return wrapError(BinaryUnsupported, "truncated alphabet entry", err)
		}
		alphabet.Intern(string(buf))
	}
	return nil
}

// readName reads a uvarint code-point count followed by that many uvarint
// code points, forming a transducer's (possibly suffixed) name.
func readName(br *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(br)
	if err != nil {
		return "", wrapError(BinaryUnsupported, "truncated transducer name length", err)
	}
	runes := make([]rune, 0, n)
	for i := uint64(0); i < n; i++ {
		cp, err := binary.ReadUvarint(br)
		if err != nil {
			return "", wrapError(BinaryUnsupported, "truncated transducer name", err)
		}
		runes = append(runes, rune(cp))
	}
	return string(runes), nil
}

// readTransducerBody reads one transducer's (Q, q0, delta, F) payload: a
// node count, then for each node its out-edges (in, out, weight, target),
// then the initial node id, then the finals map.
func readTransducerBody(br *bufio.Reader, name string, class FinalClass) (*Transducer, error) {
	t := newTransducer(name, class)

	nodeCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, wrapError(BinaryUnsupported, "truncated node count in "+name, err)
	}
	for i := uint64(1); i < nodeCount; i++ {
		t.addNode()
	}

	for n := NodeID(0); n < NodeID(nodeCount); n++ {
		outDegree, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, wrapError(BinaryUnsupported, "truncated out-degree in "+name, err)
		}
		for e := uint64(0); e < outDegree; e++ {
			in, err := binary.ReadUvarint(br)
			if err != nil {
				return nil, wrapError(BinaryUnsupported, "truncated edge input in "+name, err)
			}
			out, err := binary.ReadUvarint(br)
			if err != nil {
				return nil, wrapError(BinaryUnsupported, "truncated edge output in "+name, err)
			}
			weight, err := readFloat64(br)
			if err != nil {
				return nil, wrapError(BinaryUnsupported, "truncated edge weight in "+name, err)
			}
			target, err := binary.ReadUvarint(br)
			if err != nil {
				return nil, wrapError(BinaryUnsupported, "truncated edge target in "+name, err)
			}
			t.addTransition(n, Transition{In: SymbolID(in), Out: SymbolID(out), Weight: weight, Target: NodeID(target)})
		}
	}

	initial, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, wrapError(BinaryUnsupported, "truncated initial state in "+name, err)
	}
	t.Initial = NodeID(initial)

	finalCount, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, wrapError(BinaryUnsupported, "truncated finals count in "+name, err)
	}
	for i := uint64(0); i < finalCount; i++ {
		node, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, wrapError(BinaryUnsupported, "truncated final entry in "+name, err)
		}
		weight, err := readFloat64(br)
		if err != nil {
			return nil, wrapError(BinaryUnsupported, "truncated final weight in "+name, err)
		}
		t.Finals[NodeID(node)] = weight
	}

	return t, nil
}

func readFloat64(br *bufio.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(br, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}
