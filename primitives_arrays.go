package corevm

func primArray(vm *VM, args []*Object) (*Object, error) {
	return vm.NewArray(args), nil
}

func primArrayRef(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "array-ref", 2, len(args))
	}
	if err := requireKind(vm, "array-ref", args[0], KindArray); err != nil {
		return nil, err
	}
	items := ArrayItems(args[0])
	idx := int(NumberValue(args[1]))
	if idx < 0 || idx >= len(items) {
		return nil, vm.newError(RangeError, "array index out of bounds", Range{})
	}
	return items[idx], nil
}

func primArraySet(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 3 {
		return nil, arityError(vm, "array-set!", 3, len(args))
	}
	if err := requireKind(vm, "array-set!", args[0], KindArray); err != nil {
		return nil, err
	}
	idx := int(NumberValue(args[1]))
	if err := ArraySet(vm, args[0], idx, args[2]); err != nil {
		return nil, err
	}
	return args[2], nil
}

func primArrayPush(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "array-push!", 2, len(args))
	}
	if err := requireKind(vm, "array-push!", args[0], KindArray); err != nil {
		return nil, err
	}
	if err := ArrayPush(vm, args[0], args[1]); err != nil {
		return nil, err
	}
	return args[0], nil
}

func primArrayPop(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "array-pop!", 1, len(args))
	}
	if err := requireKind(vm, "array-pop!", args[0], KindArray); err != nil {
		return nil, err
	}
	return ArrayPop(vm, args[0])
}

func primArrayLength(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "array-length", 1, len(args))
	}
	if err := requireKind(vm, "array-length", args[0], KindArray); err != nil {
		return nil, err
	}
	return vm.NewNumber(float64(len(ArrayItems(args[0])))), nil
}

func primArrayToList(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "array->list", 1, len(args))
	}
	if err := requireKind(vm, "array->list", args[0], KindArray); err != nil {
		return nil, err
	}
	return vm.SliceToList(ArrayItems(args[0])), nil
}

func primListToArray(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "list->array", 1, len(args))
	}
	items, ok := ListToSlice(args[0])
	if !ok {
		return nil, typeError(vm, "list->array", "proper list", args[0])
	}
	return vm.NewArray(items), nil
}
