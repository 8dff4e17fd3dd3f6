package lttproc

import "fmt"

// ErrorKind classifies the fatal/soft failure modes of the processor,
// mirroring the "Error kinds" table of the original FST processor.
type ErrorKind int

const (
	// StreamMalformed marks an unterminated escape or bracket block.
	StreamMalformed ErrorKind = iota
	// BinaryUnsupported marks a corrupt header or an unknown feature bit.
	BinaryUnsupported
	// DictionaryInvalid marks a structurally invalid transducer (see Root.Valid).
	DictionaryInvalid
	// TransducerNameUnsupported marks an unrecognized finals-class suffix.
	TransducerNameUnsupported
	// CompoundBlowup is soft: MAX_COMBINATIONS was exceeded during decomposition.
	CompoundBlowup
)

func (k ErrorKind) String() string {
	switch k {
	case StreamMalformed:
		return "malformed input stream"
	case BinaryUnsupported:
		return "unsupported binary"
	case DictionaryInvalid:
		return "invalid dictionary"
	case TransducerNameUnsupported:
		return "unsupported transducer name"
	case CompoundBlowup:
		return "compound analysis blowup"
	default:
		return "unknown error"
	}
}

// ProcessorError wraps an ErrorKind with a diagnostic message, so callers
// can use errors.As to recover the kind without parsing strings.
type ProcessorError struct {
	kind ErrorKind
	msg  string
	err  error
}

func newError(kind ErrorKind, msg string) *ProcessorError {
	return &ProcessorError{kind: kind, msg: msg}
}

func wrapError(kind ErrorKind, msg string, err error) *ProcessorError {
	return &ProcessorError{kind: kind, msg: msg, err: err}
}

// Kind reports which of the five failure modes produced this error.
func (e *ProcessorError) Kind() ErrorKind { return e.kind }

func (e *ProcessorError) Error() string {
	if e.msg == "" {
		return e.kind.String()
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *ProcessorError) Unwrap() error { return e.err }

// Fatal reports whether the error kind terminates the current invocation
// (all but CompoundBlowup, which is recovered into an empty decomposition).
func (e *ProcessorError) Fatal() bool { return e.kind != CompoundBlowup }
