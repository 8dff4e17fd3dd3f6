package lttproc

import (
	"strings"

	"github.com/derekparker/trie"
)

// SymbolID identifies a single code point or an interned multichar symbol
// ("<tag>") in an Alphabet. 0 is reserved for epsilon by convention of the
// loaded binary (see binaryfile.go).
type SymbolID int32

// Alphabet maps between multichar symbol strings and integer ids, and knows
// how to pack/unpack the (upper,lower) id pairs used on transition labels.
//
// Multichar symbols are additionally indexed in a trie keyed by the tag
// text, so code that needs to probe for a family of conventional tag names
// (compound.go's control-symbol discovery) can use prefix search instead of
// repeating a linear scan over the id table.
type Alphabet struct {
	strToID map[string]SymbolID
	idToStr map[SymbolID]string
	tags    *trie.Trie
	next    SymbolID
}

// NewAlphabet returns an empty alphabet. Single-character ids are not
// pre-populated: Lookup(id) falls back to treating id as a rune whenever it
// isn't present in idToStr, so ordinary characters never need interning.
func NewAlphabet() *Alphabet {
	return &Alphabet{
		strToID: make(map[string]SymbolID),
		idToStr: make(map[SymbolID]string),
		tags:    trie.New(),
		next:    1,
	}
}

// Intern returns the id for str, allocating a new one on first sight.
// Idempotent: repeated calls with the same string return the same id.
func (a *Alphabet) Intern(str string) SymbolID {
	if id, ok := a.strToID[str]; ok {
		return id
	}
	id := a.next
	a.next++
	a.strToID[str] = id
	a.idToStr[id] = str
	if a.IsTag(str) {
		a.tags.Add(str, id)
	}
	return id
}

// Lookup renders id back into a string. Single-code-point ids that were
// never interned as multichar symbols return the bare rune.
func (a *Alphabet) Lookup(id SymbolID) string {
	if str, ok := a.idToStr[id]; ok {
		return str
	}
	return string(rune(id))
}

// IsTag reports whether str has the "<...>" shape of a multichar tag.
func (a *Alphabet) IsTag(str string) bool {
	return strings.HasPrefix(str, "<") && strings.HasSuffix(str, ">") && len(str) >= 2
}

// IsTagID reports whether id was interned from a tag-shaped string.
func (a *Alphabet) IsTagID(id SymbolID) bool {
	str, ok := a.idToStr[id]
	return ok && a.IsTag(str)
}

// TagsWithPrefix returns every interned tag id whose text starts with
// prefix, in the order the trie's prefix search returns them. Used by
// compound.go to probe for CompoundOnlyL/CompoundR under several
// conventional spellings without repeating a linear scan per candidate.
func (a *Alphabet) TagsWithPrefix(prefix string) []SymbolID {
	keys := a.tags.PrefixSearch(prefix)
	ids := make([]SymbolID, 0, len(keys))
	for _, k := range keys {
		if id, ok := a.strToID[k]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// setSymbol mutates the string rendering of id, used to blank out control
// symbols (CompoundOnlyL, CompoundR) so they render empty when
// Config.ShowControlSymbols is false.
func (a *Alphabet) setSymbol(id SymbolID, str string) {
	if old, ok := a.idToStr[id]; ok {
		delete(a.strToID, old)
	}
	a.idToStr[id] = str
	if str != "" {
		a.strToID[str] = id
	}
}

// pairShift places the upper component of an (upper,lower) label pair in
// the high 32 bits, leaving the low 32 for the lower component. It is a
// deterministic injective packing; Transition itself stores In and Out as
// separate fields and does not use it.
const pairShift = 32

// EncodePair packs two symbol ids deterministically into one label id.
func EncodePair(up, lo SymbolID) int64 {
	return int64(up)<<pairShift | int64(uint32(lo))
}

// DecodePair unpacks a label produced by EncodePair.
func DecodePair(label int64) (up, lo SymbolID) {
	return SymbolID(label >> pairShift), SymbolID(int32(label))
}
