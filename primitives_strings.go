package corevm

import (
	"strconv"
	"strings"
)

// primConcat joins its String arguments (§4.2's string-interpolation
// desugaring expands `\{expr}` into `(concat ... (evalq expr) ...)`,
// relying on evalq already having produced a String).
func primConcat(vm *VM, args []*Object) (*Object, error) {
	var b strings.Builder
	for _, a := range args {
		if err := requireKind(vm, "concat", a, KindString); err != nil {
			return nil, err
		}
		b.Write(StringBytes(a))
	}
	return vm.NewString(b.String()), nil
}

// primSubstring slices [start, end) on UTF-8 rune boundaries (§8.7):
// both bounds are advanced forward via RuneBoundary so a caller-supplied
// interior index never splits a multi-byte rune.
func primSubstring(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, arityError(vm, "substring", 2, len(args))
	}
	if err := requireKind(vm, "substring", args[0], KindString); err != nil {
		return nil, err
	}
	b := StringBytes(args[0])
	start := RuneBoundary(b, int(NumberValue(args[1])))
	end := len(b)
	if len(args) == 3 {
		end = RuneBoundary(b, int(NumberValue(args[2])))
	}
	if start > end {
		return nil, vm.newError(RangeError, "substring start past end", Range{})
	}
	return vm.NewString(string(b[start:end])), nil
}

func primStringLength(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "string-length", 1, len(args))
	}
	if err := requireKind(vm, "string-length", args[0], KindString); err != nil {
		return nil, err
	}
	return vm.NewNumber(float64(len([]rune(StringValue(args[0]))))), nil
}

func primStringEq(vm *VM, args []*Object) (*Object, error) {
	for i := 1; i < len(args); i++ {
		if err := requireKind(vm, "string=?", args[i-1], KindString); err != nil {
			return nil, err
		}
		if err := requireKind(vm, "string=?", args[i], KindString); err != nil {
			return nil, err
		}
		if StringValue(args[i-1]) != StringValue(args[i]) {
			return theFalse, nil
		}
	}
	return theTrue, nil
}

func primStringToSymbol(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "string->symbol", 1, len(args))
	}
	if err := requireKind(vm, "string->symbol", args[0], KindString); err != nil {
		return nil, err
	}
	return vm.Intern(StringValue(args[0])), nil
}

func primSymbolToString(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "symbol->string", 1, len(args))
	}
	if err := requireKind(vm, "symbol->string", args[0], KindSymbol); err != nil {
		return nil, err
	}
	return vm.NewString(SymbolName(args[0])), nil
}

func primStringToNumber(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "string->number", 1, len(args))
	}
	if err := requireKind(vm, "string->number", args[0], KindString); err != nil {
		return nil, err
	}
	v, err := strconv.ParseFloat(StringValue(args[0]), 64)
	if err != nil {
		return theFalse, nil
	}
	return vm.NewNumber(v), nil
}

func primNumberToString(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "number->string", 1, len(args))
	}
	if err := requireKind(vm, "number->string", args[0], KindNumber); err != nil {
		return nil, err
	}
	return vm.NewString(formatNumber(NumberValue(args[0]))), nil
}
