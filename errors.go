package corevm

import "fmt"

// ErrorKind is the stable taxonomy from which every VM-raised error is
// drawn (§7). UserThrow is the one kind whose payload is an arbitrary
// Object rather than a formatted message.
type ErrorKind int

const (
	ReadError ErrorKind = iota
	TypeError
	ArityError
	UnboundSymbol
	ImmutableError
	RangeError
	IOError
	InternalError
	UserThrow
)

func (k ErrorKind) String() string {
	switch k {
	case ReadError:
		return "ReadError"
	case TypeError:
		return "TypeError"
	case ArityError:
		return "ArityError"
	case UnboundSymbol:
		return "UnboundSymbol"
	case ImmutableError:
		return "ImmutableError"
	case RangeError:
		return "RangeError"
	case IOError:
		return "IOError"
	case InternalError:
		return "InternalError"
	case UserThrow:
		return "UserThrow"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// VMError is the error raised by a primitive or the evaluator (§7). It
// carries enough positional context to let the callstack printer locate
// the offending source excerpt when one is available.
type VMError struct {
	Kind    ErrorKind
	Message string
	File    string
	Line    int
	Offset  int
	// Payload carries the user value for a UserThrow; nil otherwise.
	Payload *Object
}

func (e *VMError) Error() string {
	if e.Kind == UserThrow {
		return fmt.Sprintf("thrown: %v", e.Payload)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s (%s:%d:%d)", e.Kind, e.Message, e.File, e.Line, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// newError builds a VMError located at rg, filling file/line from the
// VM's active reader position when one is being tracked. It does not
// perform the nonlocal escape itself -- callers return it as a normal Go
// error, and the evaluator's catch/throw machinery (eval.go) is what
// turns it into an unwind to the nearest catch frame.
func (vm *VM) newError(kind ErrorKind, message string, rg Range) error {
	e := &VMError{Kind: kind, Message: message, Offset: rg.Start}
	if vm.reader != nil && vm.reader.sourceFile != "" {
		e.File = vm.reader.sourceFile
		if vm.reader.lines != nil {
			e.Line = vm.reader.lines.locationAt(rg.Start).Line
		}
	}
	return e
}

// newThrow wraps a user-level `throw` payload.
func (vm *VM) newThrow(payload *Object) error {
	return &VMError{Kind: UserThrow, Payload: payload}
}

// readError is the internal error type used while tokenizing/parsing,
// mirroring the teacher's backtrackingError: it's discarded or promoted
// to a *VMError with ReadError kind by the reader's top-level entry
// points, never escapes reader.go.
type readError struct {
	message string
	rg      Range
}

func (e *readError) Error() string { return fmt.Sprintf("%s @ %s", e.message, e.rg) }
