package corevm

import (
	"fmt"
	"sort"
)

// registerPrimitives binds every entry of primitiveTable into vm's root
// environment as a Native-Procedure. Every bound name is also marked
// primitive on its (shared, cross-VM) symbol via initSharedConstants,
// which iterates primitiveNames the first time any VM interns a symbol.
func registerPrimitives(vm *VM) {
	for name, fn := range primitiveTable {
		sym := vm.Intern(name)
		proc := vm.NewNativeProcedure(name, fn)
		if err := EnvDefine(vm, vm.rootEnv, sym, proc); err != nil {
			panic(fmt.Sprintf("registerPrimitives: %s: %v", name, err))
		}
	}
}

// primitiveTable and primitiveNames are filled by init rather than by
// package-level initializers: primitives such as eval, apply and
// string->symbol reach applyTail and Intern, which read them, and Go
// rejects that dependency as an initialization cycle.
var (
	primitiveTable map[string]NativeFunc
	primitiveNames []string
)

func init() {
	primitiveTable = primitiveEntries()
	for name := range primitiveTable {
		primitiveNames = append(primitiveNames, name)
	}
	sort.Strings(primitiveNames)
}

func arityError(vm *VM, name string, want int, got int) error {
	return vm.newError(ArityError, fmt.Sprintf("%s expects %d argument(s), got %d", name, want, got), Range{})
}

func typeError(vm *VM, name string, want string, got *Object) error {
	return vm.newError(TypeError, fmt.Sprintf("%s expects a %s, got %s", name, want, got.Kind()), Range{})
}

func requireKind(vm *VM, name string, o *Object, k Kind) error {
	if o.kind != k {
		return typeError(vm, name, k.String(), o)
	}
	return nil
}

func boolObj(b bool) *Object {
	if b {
		return theTrue
	}
	return theFalse
}

func primitiveEntries() map[string]NativeFunc {
	return map[string]NativeFunc{
	// ---- arithmetic ----
	"+": primAdd,
	"-": primSub,
	"*": primMul,
	"/": primDiv,
	"%": primMod,

	"=":  primNumEq,
	"<":  primLess,
	">":  primGreater,
	"<=": primLessEq,
	">=": primGreaterEq,

	// ---- equality / predicates ----
	"eq?":    primEq,
	"equal?": primEqual,
	"not":    primNot,

	"pair?":            primIsKind(KindPair),
	"null?":             primIsNull,
	"number?":          primIsKind(KindNumber),
	"string?":          primIsKind(KindString),
	"symbol?":          primIsKind(KindSymbol),
	"array?":           primIsKind(KindArray),
	"dictionary?":      primIsKind(KindDictionary),
	"buffer?":          primIsKind(KindBuffer),
	"port?":            primIsKind(KindPort),
	"procedure?":       primIsProcedure,
	"integer?":         primIsInteger,

	// ---- pairs / lists ----
	"cons":   primCons,
	"car":    primCar,
	"cdr":    primCdr,
	"set-car!": primSetCar,
	"set-cdr!": primSetCdr,
	"list":   primList,
	"length": primLength,
	"append": primAppend,
	"reverse": primReverse,
	"nth":    primNth,
	"map":    primMap,
	"filter": primFilter,
	"fold":   primFold,

	// ---- strings ----
	"concat":          primConcat,
	"substring":        primSubstring,
	"string-length":    primStringLength,
	"string=?":         primStringEq,
	"string->symbol":   primStringToSymbol,
	"symbol->string":   primSymbolToString,
	"string->number":   primStringToNumber,
	"number->string":   primNumberToString,

	// ---- arrays ----
	"array":        primArray,
	"array-ref":    primArrayRef,
	"array-set!":   primArraySet,
	"array-push!":  primArrayPush,
	"array-pop!":   primArrayPop,
	"array-length": primArrayLength,
	"array->list":  primArrayToList,
	"list->array":  primListToArray,

	// ---- dictionaries ----
	"dict":          primDict,
	"dict-get":      primDictGet,
	"dict-set!":     primDictSet,
	"dict-delete!":  primDictDelete,
	"dict-keys":     primDictKeys,
	"dict-values":   primDictValues,
	"dict-count":    primDictCount,
	"get":           primGet,

	// ---- buffers ----
	"buffer":          primBuffer,
	"buffer-append!":  primBufferAppend,
	"buffer-length":   primBufferLength,
	"buffer->string":  primBufferToString,
	"string->buffer":  primStringToBuffer,

	// ---- base conversions (§8.8) ----
	"hex-encode":    primHexEncode,
	"hex-decode":    primHexDecode,
	"base64-encode": primBase64Encode,
	"base64-decode": primBase64Decode,
	"base58-encode": primBase58Encode,
	"base58-decode": primBase58Decode,

	// ---- I/O ----
	"read":       primRead,
	"write":      primWrite,
	"print":      primPrint,
	"println":    primPrintln,
	"read-line":  primReadLine,
	"write-line": primWriteLine,
	"flush":      primFlush,
	"close":      primClose,
	"ready?":     primReady,

	// ---- evaluation ----
	"eval":  primEval,
	"evalq": primEvalq,
	"apply": primApply,
	}
}
