package corevm

import "fmt"

// Kind discriminates the tagged union of heap object variants described
// in the data model. It is the single source of truth for how to
// interpret an Object's payload field.
type Kind uint8

const (
	KindNumber Kind = iota
	KindString
	KindSymbol
	KindPair
	KindArray
	KindDictionary
	KindBuffer
	KindPort
	KindStream
	KindEnvironment
	KindProcedure
	KindNativeProcedure
	KindMacro
	KindExtension
	KindSourceFile
	KindSourceMapping
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindPair:
		return "pair"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindBuffer:
		return "buffer"
	case KindPort:
		return "port"
	case KindStream:
		return "stream"
	case KindEnvironment:
		return "environment"
	case KindProcedure:
		return "procedure"
	case KindNativeProcedure:
		return "native-procedure"
	case KindMacro:
		return "macro"
	case KindExtension:
		return "extension-object"
	case KindSourceFile:
		return "source-file"
	case KindSourceMapping:
		return "source-mapping"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// flags holds the common status bits every heap Object carries
// regardless of its Kind: marked (GC), immutable/const, method-callable,
// tail-call marker, etc. Keeping these on a fixed-size header rather than
// on the per-variant payload is what lets the evaluator and the GC flip a
// bit without knowing the variant.
type flags uint16

const (
	flagMarked flags = 1 << iota
	flagImmutable
	flagConst
	flagMethod
	flagTailCall
	flagIsReturn
	flagIsList
	flagPrimitive
	flagSpecial
	flagTracing
	flagClosed
	flagNoBuf
	flagIsATTY
	flagNoDef
	flagInterned
)

// Object is the common header every heap value shares. The payload
// field holds one of the kind-specific *Data structs declared alongside
// each variant (pairData, stringData, envData, ...); Kind says which.
type Object struct {
	kind    Kind
	flags   flags
	owner   *VM
	payload any
}

func newObject(kind Kind, owner *VM, payload any) *Object {
	return &Object{kind: kind, owner: owner, payload: payload}
}

func (o *Object) Kind() Kind { return o.kind }

func (o *Object) has(f flags) bool  { return o.flags&f != 0 }
func (o *Object) set(f flags)       { o.flags |= f }
func (o *Object) clear(f flags)     { o.flags &^= f }
func (o *Object) Marked() bool      { return o.has(flagMarked) }
func (o *Object) Immutable() bool   { return o.has(flagImmutable) }
func (o *Object) IsConst() bool     { return o.has(flagConst) }
func (o *Object) Interned() bool    { return o.has(flagInterned) }

// Owner returns the VM that allocated o. Cross-VM write checks compare
// this against the current VM (§5): mutation of an object owned by a
// foreign VM must fail with ImmutableError.
func (o *Object) Owner() *VM { return o.owner }

// ownedBy reports whether vm may mutate o: either vm allocated it, or it
// is an interned/constant object immortal across every VM.
func (o *Object) ownedBy(vm *VM) bool {
	return o.Interned() || o.owner == vm
}

// Self-evaluating (immutable in the evaluator's sense) reports whether
// evaluating this object returns itself rather than looking it up or
// applying it.
func (o *Object) selfEvaluating() bool {
	switch o.kind {
	case KindPair:
		return false
	case KindSymbol:
		return false
	default:
		return true
	}
}

// Equal implements the equality rules from §3: numbers by value,
// strings/buffers by content, everything else (symbols included) by
// pointer identity.
func Equal(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return a.payload.(numberData).value == b.payload.(numberData).value
	case KindString:
		return string(a.payload.(*stringData).bytes) == string(b.payload.(*stringData).bytes)
	case KindBuffer:
		ab, bb := a.payload.(*bufferData), b.payload.(*bufferData)
		return string(ab.bytes) == string(bb.bytes)
	default:
		return false
	}
}

// Truthy implements the VM's notion of a value being "false" only when
// it is literally the `false` sentinel; everything else, including 0 and
// the empty string, is truthy. This matches the reserved-symbol design
// (§6) where `false` is a distinguished sentinel rather than a
// convention over zero values.
func Truthy(o *Object) bool {
	return o != theFalse
}
