package corevm

func primIsKind(k Kind) NativeFunc {
	return func(vm *VM, args []*Object) (*Object, error) {
		if len(args) != 1 {
			return nil, arityError(vm, k.String()+"?", 1, len(args))
		}
		return boolObj(args[0].kind == k), nil
	}
}

func primIsNull(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "null?", 1, len(args))
	}
	return boolObj(args[0] == theNil), nil
}

func primIsProcedure(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "procedure?", 1, len(args))
	}
	k := args[0].kind
	return boolObj(k == KindProcedure || k == KindNativeProcedure), nil
}

func primIsInteger(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "integer?", 1, len(args))
	}
	return boolObj(args[0].kind == KindNumber && IsInt(args[0])), nil
}

func primEq(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "eq?", 2, len(args))
	}
	return boolObj(args[0] == args[1]), nil
}

func primEqual(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "equal?", 2, len(args))
	}
	return boolObj(deepEqual(args[0], args[1])), nil
}

// deepEqual extends Equal (§3) to Pairs/Arrays/Dictionaries structurally,
// the comparison `equal?` needs that the primitive equality rules
// (pointer identity for compound kinds) don't provide.
func deepEqual(a, b *Object) bool {
	if Equal(a, b) {
		return true
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindPair:
		if a == theNil || b == theNil {
			return a == theNil && b == theNil
		}
		return deepEqual(Car(a), Car(b)) && deepEqual(Cdr(a), Cdr(b))
	case KindArray:
		ai, bi := ArrayItems(a), ArrayItems(b)
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if !deepEqual(ai[i], bi[i]) {
				return false
			}
		}
		return true
	case KindDictionary:
		ae, be := DictEntries(a), DictEntries(b)
		if len(ae) != len(be) {
			return false
		}
		for _, s := range ae {
			v, ok := DictLookup(b, s.key)
			if !ok || !deepEqual(s.value, v) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func primNot(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "not", 1, len(args))
	}
	return boolObj(!Truthy(args[0])), nil
}
