package lttproc

// Config collects every toggle the original implementation kept as scattered
// FSTProcessor fields, following the "explicit configuration record" design
// note: one struct, passed by pointer into every driver, instead of
// initialization-order-sensitive globals.
type Config struct {
	// CaseSensitive, if true, never folds case during stepping.
	CaseSensitive bool

	// DictionaryCase, if true, disables surface-case reapplication: both
	// Uppercase and FirstUpper are forced false at filter time.
	DictionaryCase bool

	// NullFlush treats '\0' in the stream as a segment boundary that
	// flushes output and resets per-segment scratch state.
	NullFlush bool

	// UseIgnoredChars enables the explicit ignored-character set loaded via ICX.
	UseIgnoredChars bool

	// UseDefaultIgnoredChars seeds the ignored set with U+00AD (soft hyphen).
	UseDefaultIgnoredChars bool

	// UseRestoreChars enables simplistic diacritic restoration loaded via RCX.
	UseRestoreChars bool

	// DisplayWeightsMode appends "<W:0.0000>" to each filtered analysis.
	DisplayWeightsMode bool

	// ShowControlSymbols, if false, blanks out CompoundOnlyL/CompoundR
	// control symbols when rendering lexical forms.
	ShowControlSymbols bool

	// BiltransSurfaceForms makes the bilingual driver track and emit the
	// pre-'/' surface portion of a source analysis instead of the full sf.
	BiltransSurfaceForms bool

	// MaxAnalyses caps the number of analyses filterFinals keeps; 0 = unlimited.
	MaxAnalyses int

	// MaxWeightClasses caps the number of distinct weight values kept; 0 = unlimited.
	MaxWeightClasses int

	// CompoundMaxElements bounds the number of '+'-joined compound segments.
	CompoundMaxElements int

	// GenerationMode selects how ModeGeneration renders an unmatched or
	// starred/at-marked token (spec.md §4.G's clean/unknown/all/tagged/
	// tagged_nm submodes).
	GenerationMode GenerationMode

	// CarefulCase makes generation step uppercase letters through
	// StateSet.StepCareful instead of StepPair: the original-case symbol is
	// tried first and the lowercased one only when that matched nothing,
	// instead of unioning both branches in one step.
	CarefulCase bool
}

// NewConfig returns the defaults used by the original tool when no flags
// are passed: case folding on, unlimited analyses and weight classes, and
// compounds of up to four elements.
func NewConfig() *Config {
	return &Config{
		CaseSensitive:          false,
		DictionaryCase:         false,
		NullFlush:              false,
		UseDefaultIgnoredChars: true,
		CompoundMaxElements:    4,
	}
}
