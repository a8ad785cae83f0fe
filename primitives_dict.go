package corevm

func primDict(vm *VM, args []*Object) (*Object, error) {
	if len(args)%2 != 0 {
		return nil, vm.newError(ArityError, "dict expects an even number of key/value arguments", Range{})
	}
	d := vm.NewDictionary()
	for i := 0; i < len(args); i += 2 {
		key := args[i]
		if key.kind != KindSymbol {
			return nil, typeError(vm, "dict", "symbol key", key)
		}
		if err := DictSet(vm, d, key, args[i+1]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func primDictGet(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "dict-get", 2, len(args))
	}
	if err := requireKind(vm, "dict-get", args[0], KindDictionary); err != nil {
		return nil, err
	}
	v, ok := DictLookup(args[0], args[1])
	if !ok {
		return theUndef, nil
	}
	return v, nil
}

func primDictSet(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 3 {
		return nil, arityError(vm, "dict-set!", 3, len(args))
	}
	if err := requireKind(vm, "dict-set!", args[0], KindDictionary); err != nil {
		return nil, err
	}
	if err := DictSet(vm, args[0], args[1], args[2]); err != nil {
		return nil, err
	}
	return args[2], nil
}

func primDictDelete(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "dict-delete!", 2, len(args))
	}
	if err := requireKind(vm, "dict-delete!", args[0], KindDictionary); err != nil {
		return nil, err
	}
	if err := DictDelete(vm, args[0], args[1]); err != nil {
		return nil, err
	}
	return theUndef, nil
}

func primDictKeys(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "dict-keys", 1, len(args))
	}
	if err := requireKind(vm, "dict-keys", args[0], KindDictionary); err != nil {
		return nil, err
	}
	entries := DictEntries(args[0])
	keys := make([]*Object, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return vm.SliceToList(keys), nil
}

func primDictValues(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "dict-values", 1, len(args))
	}
	if err := requireKind(vm, "dict-values", args[0], KindDictionary); err != nil {
		return nil, err
	}
	entries := DictEntries(args[0])
	values := make([]*Object, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}
	return vm.SliceToList(values), nil
}

func primDictCount(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "dict-count", 1, len(args))
	}
	if err := requireKind(vm, "dict-count", args[0], KindDictionary); err != nil {
		return nil, err
	}
	return vm.NewNumber(float64(DictCount(args[0]))), nil
}

// primGet backs the reader's colon-path desugaring (`a:b:c` -> `(get a
// (quote b) (quote c))`): it walks successive symbol keys through
// whichever of Dictionary or Environment the previous step produced.
func primGet(vm *VM, args []*Object) (*Object, error) {
	if len(args) < 2 {
		return nil, arityError(vm, "get", 2, len(args))
	}
	cur := args[0]
	for _, key := range args[1:] {
		if key.kind != KindSymbol {
			return nil, typeError(vm, "get", "symbol key", key)
		}
		switch cur.kind {
		case KindDictionary:
			v, ok := DictLookup(cur, key)
			if !ok {
				return nil, vm.newError(UnboundSymbol, "no key "+SymbolName(key)+" in dictionary", Range{})
			}
			cur = v
		case KindEnvironment:
			v, ok := EnvLookup(cur, key)
			if !ok {
				return nil, vm.newError(UnboundSymbol, "undefined variable "+SymbolName(key), Range{})
			}
			cur = v
		default:
			return nil, typeError(vm, "get", "dictionary or environment", cur)
		}
	}
	return cur, nil
}
