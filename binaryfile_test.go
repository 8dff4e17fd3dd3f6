package lttproc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// binaryWriter accumulates the uvarint/float64 fields LoadBinary expects,
// letting tests build a minimal legacy (unmarked) binary by hand.
type binaryWriter struct {
	buf bytes.Buffer
}

func (w *binaryWriter) uvarint(v uint64) {
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binaryWriter) float(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf.Write(tmp[:])
}

func (w *binaryWriter) name(s string) {
	runes := []rune(s)
	w.uvarint(uint64(len(runes)))
	for _, r := range runes {
		w.uvarint(uint64(r))
	}
}

func (w *binaryWriter) bytesField(s string) {
	w.uvarint(uint64(len(s)))
	w.buf.WriteString(s)
}

// buildOneWordBinary encodes a legacy (no "LTTB" magic) binary with no
// letter set, one interned tag "<n>", and a single "w@standard" transducer
// spelling "cat" -> "cat<n>" via five nodes: three letter edges followed by
// one In=0/Out=<n> tag edge into the sole final node.
func buildOneWordBinary() []byte {
	w := &binaryWriter{}

	w.uvarint(0) // letterCount

	w.uvarint(1) // alphabet table count
	w.bytesField("<n>")

	w.uvarint(1) // transducerCount
	w.name("w@standard")

	w.uvarint(5) // nodeCount

	// node 0 -> node 1 on 'c'/'c'
	w.uvarint(1)
	w.uvarint(uint64('c'))
	w.uvarint(uint64('c'))
	w.float(0)
	w.uvarint(1)

	// node 1 -> node 2 on 'a'/'a'
	w.uvarint(1)
	w.uvarint(uint64('a'))
	w.uvarint(uint64('a'))
	w.float(0)
	w.uvarint(2)

	// node 2 -> node 3 on 't'/'t'
	w.uvarint(1)
	w.uvarint(uint64('t'))
	w.uvarint(uint64('t'))
	w.float(0)
	w.uvarint(3)

	// node 3 -> node 4 on 0/<n> (tag id 1, interned first in the table)
	w.uvarint(1)
	w.uvarint(0)
	w.uvarint(1)
	w.float(0)
	w.uvarint(4)

	// node 4: final, no out-edges
	w.uvarint(0)

	w.uvarint(0) // initial state

	w.uvarint(1) // finalCount
	w.uvarint(4) // final node id
	w.float(0)   // final weight

	return w.buf.Bytes()
}

func TestLoadBinaryRoundTripsOneWordDictionary(t *testing.T) {
	assert := assert.New(t)
	root, chars, err := LoadBinary(bytes.NewReader(buildOneWordBinary()))
	assert.Nil(err)
	assert.NotNil(root)

	tr, ok := root.Transducers["w@standard"]
	assert.True(ok)
	assert.Equal(Standard, tr.Class)
	assert.Equal(NodeID(0), tr.Initial)
	assert.Len(tr.Finals, 1)

	chars.AddAlphabetic([]rune("cat"))
	ss := NewStateSet(root)
	ss.Step(SymbolID('c'))
	ss.Step(SymbolID('a'))
	ss.Step(SymbolID('t'))
	assert.True(ss.IsFinalIn(root.allFinals))

	out := ss.FilterFinals(root.allFinals, chars, false, 0, 0, false, false)
	assert.Equal("/cat<n>", out)
}

func TestLoadBinaryRejectsUnrecognizedSuffix(t *testing.T) {
	assert := assert.New(t)
	w := &binaryWriter{}
	w.uvarint(0)
	w.uvarint(0)
	w.uvarint(1)
	w.name("nosuffix")

	_, _, err := LoadBinary(bytes.NewReader(w.buf.Bytes()))
	assert.NotNil(err)
}

func TestLoadBinaryMagicHeaderWithKnownFeatures(t *testing.T) {
	assert := assert.New(t)
	body := buildOneWordBinary()

	var full bytes.Buffer
	full.WriteString(lttbMagic)
	var featBuf [8]byte
	binary.LittleEndian.PutUint64(featBuf[:], FeatureWeighted)
	full.Write(featBuf[:])
	full.Write(body)

	root, _, err := LoadBinary(bytes.NewReader(full.Bytes()))
	assert.Nil(err)
	assert.NotNil(root)
	_, ok := root.Transducers["w@standard"]
	assert.True(ok)
}

func TestLoadBinaryMagicHeaderWithUnknownFeatureBitIsFatal(t *testing.T) {
	assert := assert.New(t)
	body := buildOneWordBinary()

	var full bytes.Buffer
	full.WriteString(lttbMagic)
	var featBuf [8]byte
	binary.LittleEndian.PutUint64(featBuf[:], featureUnknown)
	full.Write(featBuf[:])
	full.Write(body)

	_, _, err := LoadBinary(bytes.NewReader(full.Bytes()))
	assert.NotNil(err)
}
