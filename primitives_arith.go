package corevm

import "math"

func primAdd(vm *VM, args []*Object) (*Object, error) {
	sum := 0.0
	for _, a := range args {
		if err := requireKind(vm, "+", a, KindNumber); err != nil {
			return nil, err
		}
		sum += NumberValue(a)
	}
	return vm.NewNumber(sum), nil
}

func primSub(vm *VM, args []*Object) (*Object, error) {
	if len(args) == 0 {
		return nil, arityError(vm, "-", 1, 0)
	}
	for _, a := range args {
		if err := requireKind(vm, "-", a, KindNumber); err != nil {
			return nil, err
		}
	}
	if len(args) == 1 {
		return vm.NewNumber(-NumberValue(args[0])), nil
	}
	result := NumberValue(args[0])
	for _, a := range args[1:] {
		result -= NumberValue(a)
	}
	return vm.NewNumber(result), nil
}

func primMul(vm *VM, args []*Object) (*Object, error) {
	result := 1.0
	for _, a := range args {
		if err := requireKind(vm, "*", a, KindNumber); err != nil {
			return nil, err
		}
		result *= NumberValue(a)
	}
	return vm.NewNumber(result), nil
}

func primDiv(vm *VM, args []*Object) (*Object, error) {
	if len(args) == 0 {
		return nil, arityError(vm, "/", 1, 0)
	}
	for _, a := range args {
		if err := requireKind(vm, "/", a, KindNumber); err != nil {
			return nil, err
		}
	}
	if len(args) == 1 {
		return vm.NewNumber(1 / NumberValue(args[0])), nil
	}
	result := NumberValue(args[0])
	for _, a := range args[1:] {
		d := NumberValue(a)
		if d == 0 {
			return nil, vm.newError(RangeError, "division by zero", Range{})
		}
		result /= d
	}
	return vm.NewNumber(result), nil
}

func primMod(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "%", 2, len(args))
	}
	a, b := args[0], args[1]
	if err := requireKind(vm, "%", a, KindNumber); err != nil {
		return nil, err
	}
	if err := requireKind(vm, "%", b, KindNumber); err != nil {
		return nil, err
	}
	if NumberValue(b) == 0 {
		return nil, vm.newError(RangeError, "modulo by zero", Range{})
	}
	return vm.NewNumber(math.Mod(NumberValue(a), NumberValue(b))), nil
}

func primNumEq(vm *VM, args []*Object) (*Object, error) {
	for i := 1; i < len(args); i++ {
		if err := requireKind(vm, "=", args[i-1], KindNumber); err != nil {
			return nil, err
		}
		if err := requireKind(vm, "=", args[i], KindNumber); err != nil {
			return nil, err
		}
		if NumberValue(args[i-1]) != NumberValue(args[i]) {
			return theFalse, nil
		}
	}
	return theTrue, nil
}

func chainCompare(vm *VM, name string, args []*Object, ok func(a, b float64) bool) (*Object, error) {
	for i := 1; i < len(args); i++ {
		if err := requireKind(vm, name, args[i-1], KindNumber); err != nil {
			return nil, err
		}
		if err := requireKind(vm, name, args[i], KindNumber); err != nil {
			return nil, err
		}
		if !ok(NumberValue(args[i-1]), NumberValue(args[i])) {
			return theFalse, nil
		}
	}
	return theTrue, nil
}

func primLess(vm *VM, args []*Object) (*Object, error) {
	return chainCompare(vm, "<", args, func(a, b float64) bool { return a < b })
}

func primGreater(vm *VM, args []*Object) (*Object, error) {
	return chainCompare(vm, ">", args, func(a, b float64) bool { return a > b })
}

func primLessEq(vm *VM, args []*Object) (*Object, error) {
	return chainCompare(vm, "<=", args, func(a, b float64) bool { return a <= b })
}

func primGreaterEq(vm *VM, args []*Object) (*Object, error) {
	return chainCompare(vm, ">=", args, func(a, b float64) bool { return a >= b })
}
