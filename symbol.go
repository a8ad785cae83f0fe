package corevm

import "sync"

// symbolData backs every interned Symbol. Identity inside one VM is
// pointer identity: two reads of the same name always yield the same
// *Object, because interning always goes through the shared constant
// table, then the VM's own table, then (failing that) the parent VM's
// table before allocating a fresh symbol.
type symbolData struct {
	name        string
	hash        uint64
	isConst     bool
	isPrimitive bool
	isSpecial   bool
}

func symbolHash(o *Object) uint64 { return o.payload.(*symbolData).hash }

func SymbolName(o *Object) string   { return o.payload.(*symbolData).name }
func symIsConst(o *Object) bool     { return o.payload.(*symbolData).isConst }
func symIsPrimitive(o *Object) bool { return o.payload.(*symbolData).isPrimitive }
func symIsSpecial(o *Object) bool   { return o.payload.(*symbolData).isSpecial }

func markSymConst(o *Object)     { o.payload.(*symbolData).isConst = true }
func markSymPrimitive(o *Object) { o.payload.(*symbolData).isPrimitive = true }
func markSymSpecial(o *Object)   { o.payload.(*symbolData).isSpecial = true }

// Reserved symbol names (§6), interned once into the shared constant
// table and never deleted.
var reservedSpecialForms = []string{
	"quote", "quasiquote", "unquote", "unquote-splicing",
	"if", "cond", "case", "match", "let", "begin", "lambda",
	"define", "defconst", "defmacro", "defmethod",
	"and", "or", "set!", "catch", "throw", "return",
	"this", "debug", "with-input", "with-output", "else",
}

var reservedModifiers = []string{"&key", "&label", "&optional", "&rest"}

var reservedSentinelNames = []string{"true", "false", "undefined", "*eof*"}

var reservedStreamNames = []string{"*stdin*", "*stdout*", "*stderr*"}

// sentinel object handles, valid once the package-level shared constant
// table has been built (initSharedConstants, via sync.Once).
var (
	theTrue     *Object
	theFalse    *Object
	theUndef    *Object
	theEOF      *Object
	theNil      *Object
	quoteSym    *Object
	quasiSym    *Object
	unquoteSym  *Object
	unquoteSplS *Object

	sharedSymbols map[string]*Object
	sharedOnce    sync.Once
)

// newSharedSymbol allocates a symbol with no owning VM: it is
// immortal, marked permanently, and visible to every VM (§9: "place the
// table in shared immutable storage and rely on pointer/handle identity
// for comparison").
func newSharedSymbol(name string) *Object {
	o := &Object{kind: KindSymbol, flags: flagImmutable | flagInterned | flagMarked}
	o.payload = &symbolData{name: name, hash: hashBytes([]byte(name))}
	sharedSymbols[name] = o
	return o
}

func initSharedConstants() {
	sharedSymbols = make(map[string]*Object, 64)

	for _, name := range reservedSpecialForms {
		markSymSpecial(newSharedSymbol(name))
	}
	for _, name := range reservedModifiers {
		newSharedSymbol(name)
	}
	for _, name := range reservedStreamNames {
		newSharedSymbol(name)
	}
	for _, name := range reservedSentinelNames {
		s := newSharedSymbol(name)
		markSymConst(s)
	}
	for _, name := range primitiveNames {
		markSymPrimitive(newSharedSymbol(name))
	}

	theTrue = sharedSymbols["true"]
	theFalse = sharedSymbols["false"]
	theUndef = sharedSymbols["undefined"]
	theEOF = sharedSymbols["*eof*"]
	quoteSym = sharedSymbols["quote"]
	quasiSym = sharedSymbols["quasiquote"]
	unquoteSym = sharedSymbols["unquote"]
	unquoteSplS = sharedSymbols["unquote-splicing"]

	// nil (the empty list) is a dedicated immortal Pair whose car/cdr
	// both point back to itself, rather than a Go nil pointer, so every
	// *Object method works uniformly on it.
	theNil = &Object{kind: KindPair, flags: flagImmutable | flagInterned | flagMarked}
	theNil.payload = &pairData{}
	theNil.payload.(*pairData).car = theNil
	theNil.payload.(*pairData).cdr = theNil
}

// Intern returns the unique Symbol object for name, shared across every
// VM for reserved/primitive names, otherwise scoped to vm (and, failing
// a local hit, looked up in vm's parent before a fresh symbol is
// allocated).
func (vm *VM) Intern(name string) *Object {
	sharedOnce.Do(initSharedConstants)
	if sym, ok := sharedSymbols[name]; ok {
		return sym
	}
	if sym, ok := vm.symbols[name]; ok {
		return sym
	}
	if vm.parent != nil {
		if sym, ok := vm.parent.symbols[name]; ok {
			vm.symbols[name] = sym
			return sym
		}
	}
	o := vm.heap.newObj(KindSymbol)
	o.set(flagImmutable)
	o.payload = &symbolData{name: name, hash: hashBytes([]byte(name))}
	vm.symbols[name] = o
	return o
}
