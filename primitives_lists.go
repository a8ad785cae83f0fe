package corevm

func primCons(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "cons", 2, len(args))
	}
	return vm.Cons(args[0], args[1]), nil
}

func primCar(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "car", 1, len(args))
	}
	if err := requireKind(vm, "car", args[0], KindPair); err != nil {
		return nil, err
	}
	if args[0] == theNil {
		return nil, vm.newError(TypeError, "car of the empty list", Range{})
	}
	return Car(args[0]), nil
}

func primCdr(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "cdr", 1, len(args))
	}
	if err := requireKind(vm, "cdr", args[0], KindPair); err != nil {
		return nil, err
	}
	if args[0] == theNil {
		return nil, vm.newError(TypeError, "cdr of the empty list", Range{})
	}
	return Cdr(args[0]), nil
}

func primSetCar(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "set-car!", 2, len(args))
	}
	if err := requireKind(vm, "set-car!", args[0], KindPair); err != nil {
		return nil, err
	}
	if err := SetCar(vm, args[0], args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func primSetCdr(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "set-cdr!", 2, len(args))
	}
	if err := requireKind(vm, "set-cdr!", args[0], KindPair); err != nil {
		return nil, err
	}
	if err := SetCdr(vm, args[0], args[1]); err != nil {
		return nil, err
	}
	return args[1], nil
}

func primList(vm *VM, args []*Object) (*Object, error) {
	return vm.SliceToList(args), nil
}

func primLength(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "length", 1, len(args))
	}
	items, ok := ListToSlice(args[0])
	if !ok {
		return nil, typeError(vm, "length", "proper list", args[0])
	}
	return vm.NewNumber(float64(len(items))), nil
}

func primAppend(vm *VM, args []*Object) (*Object, error) {
	var all []*Object
	for i, a := range args {
		items, ok := ListToSlice(a)
		if !ok && i != len(args)-1 {
			return nil, typeError(vm, "append", "proper list", a)
		}
		if !ok {
			if len(all) == 0 {
				return a, nil
			}
			result := a
			for j := len(all) - 1; j >= 0; j-- {
				result = vm.Cons(all[j], result)
			}
			return result, nil
		}
		all = append(all, items...)
	}
	return vm.SliceToList(all), nil
}

func primReverse(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "reverse", 1, len(args))
	}
	items, ok := ListToSlice(args[0])
	if !ok {
		return nil, typeError(vm, "reverse", "proper list", args[0])
	}
	out := make([]*Object, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return vm.SliceToList(out), nil
}

func primNth(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "nth", 2, len(args))
	}
	if err := requireKind(vm, "nth", args[0], KindNumber); err != nil {
		return nil, err
	}
	items, ok := ListToSlice(args[1])
	if !ok {
		return nil, typeError(vm, "nth", "proper list", args[1])
	}
	idx := int(NumberValue(args[0]))
	if idx < 0 || idx >= len(items) {
		return nil, vm.newError(RangeError, "nth index out of bounds", Range{})
	}
	return items[idx], nil
}

func primMap(vm *VM, args []*Object) (*Object, error) {
	if len(args) < 2 {
		return nil, arityError(vm, "map", 2, len(args))
	}
	fn := args[0]
	lists := make([][]*Object, len(args)-1)
	shortest := -1
	for i, l := range args[1:] {
		items, ok := ListToSlice(l)
		if !ok {
			return nil, typeError(vm, "map", "proper list", l)
		}
		lists[i] = items
		if shortest == -1 || len(items) < shortest {
			shortest = len(items)
		}
	}
	out := make([]*Object, shortest)
	for i := 0; i < shortest; i++ {
		callArgs := make([]*Object, len(lists))
		for j := range lists {
			callArgs[j] = lists[j][i]
		}
		v, err := vm.Apply(fn, callArgs)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return vm.SliceToList(out), nil
}

func primFilter(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "filter", 2, len(args))
	}
	fn := args[0]
	items, ok := ListToSlice(args[1])
	if !ok {
		return nil, typeError(vm, "filter", "proper list", args[1])
	}
	var out []*Object
	for _, v := range items {
		keep, err := vm.Apply(fn, []*Object{v})
		if err != nil {
			return nil, err
		}
		if Truthy(keep) {
			out = append(out, v)
		}
	}
	return vm.SliceToList(out), nil
}

func primFold(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 3 {
		return nil, arityError(vm, "fold", 3, len(args))
	}
	fn, acc := args[0], args[1]
	items, ok := ListToSlice(args[2])
	if !ok {
		return nil, typeError(vm, "fold", "proper list", args[2])
	}
	for _, v := range items {
		next, err := vm.Apply(fn, []*Object{acc, v})
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}
