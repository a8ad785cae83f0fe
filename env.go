package corevm

// envData is a scope: a Dictionary of symbol bindings plus an optional
// parent link. Lookup walks the parent chain (§4.4).
type envData struct {
	bindings *Object // KindDictionary
	parent   *Object // KindEnvironment, or nil for the root
}

func (vm *VM) NewEnvironment(parent *Object) *Object {
	bindings := vm.NewDictionary()
	o := vm.heap.newObj(KindEnvironment)
	o.payload = &envData{bindings: bindings, parent: parent}
	return o
}

func envOf(o *Object) *envData { return o.payload.(*envData) }

// EnvLookup walks the environment chain starting at env, returning the
// bound value for sym or (nil, false) if unbound anywhere in the chain.
func EnvLookup(env *Object, sym *Object) (*Object, bool) {
	for env != nil {
		if v, ok := DictLookup(envOf(env).bindings, sym); ok {
			return v, true
		}
		env = envOf(env).parent
	}
	return nil, false
}

// EnvDefine inserts sym=value into env's own frame. It fails if env is
// currently marked no_def (used while evaluating the right-hand side of
// a `define`, to stop that expression from shadowing the name it's
// about to bind) or if sym has been made constant by a defconst in any
// frame (constness is a flag on the symbol itself).
func EnvDefine(vm *VM, env, sym, value *Object) error {
	if env.has(flagNoDef) {
		return vm.newError(ImmutableError, "definitions are not allowed here", Range{})
	}
	if !env.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	if symIsConst(sym) {
		return vm.newError(ImmutableError, "cannot rebind constant symbol "+SymbolName(sym), Range{})
	}
	return DictSet(vm, envOf(env).bindings, sym, value)
}

// EnvDefconst is EnvDefine plus marking the binding constant by marking
// the symbol itself const -- matching the teacher-adjacent idiom of
// flagging status on the smallest shared handle (here the symbol,
// since a Dictionary slot has no flag bits of its own).
func EnvDefconst(vm *VM, env, sym, value *Object) error {
	if err := EnvDefine(vm, env, sym, value); err != nil {
		return err
	}
	markSymConst(sym)
	return nil
}

// EnvDefmethod defines sym in env's own frame and flags the procedure
// value as method-callable. Nothing reads the flag: applying an
// Environment as a procedure fails with a TypeError whatever its
// bindings are.
func EnvDefmethod(vm *VM, env, sym, value *Object) error {
	if err := EnvDefine(vm, env, sym, value); err != nil {
		return err
	}
	value.set(flagMethod)
	return nil
}

// EnvSet finds the nearest binding for sym in env's chain and updates it
// in place. It fails if the binding is constant, or if the frame that
// owns it belongs to a foreign VM.
func EnvSet(vm *VM, env, sym, value *Object) error {
	if symIsConst(sym) {
		return vm.newError(ImmutableError, "cannot set constant symbol "+SymbolName(sym), Range{})
	}
	cur := env
	for cur != nil {
		if _, ok := DictLookup(envOf(cur).bindings, sym); ok {
			if !cur.ownedBy(vm) {
				return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
			}
			return DictSet(vm, envOf(cur).bindings, sym, value)
		}
		cur = envOf(cur).parent
	}
	return vm.newError(UnboundSymbol, "undefined variable "+SymbolName(sym), Range{})
}
