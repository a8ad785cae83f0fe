package corevm

// primEval evaluates a data form -- typically one built with `list` or
// quasiquote -- against the root environment, or an explicit
// Environment given as a second argument (e.g. one captured from a
// closure via `(current-environment)`-style extensions).
func primEval(vm *VM, args []*Object) (*Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError(vm, "eval", 1, len(args))
	}
	env := vm.rootEnv
	if len(args) == 2 {
		if err := requireKind(vm, "eval", args[1], KindEnvironment); err != nil {
			return nil, err
		}
		env = args[1]
	}
	return vm.Eval(args[0], env)
}

// primEvalq backs the reader's string-interpolation desugaring (§4.2):
// by the time a primitive call runs, its arguments are already
// evaluated, so evalq's only job is to render whatever value the
// interpolated subform produced down to a String, the way `concat`
// requires.
func primEvalq(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "evalq", 1, len(args))
	}
	if args[0].kind == KindString {
		return args[0], nil
	}
	return vm.NewString(Print(args[0])), nil
}

// primApply calls fn with the fixed leading arguments followed by the
// elements of its final, list-valued argument spread in place.
func primApply(vm *VM, args []*Object) (*Object, error) {
	if len(args) < 2 {
		return nil, arityError(vm, "apply", 2, len(args))
	}
	fn := args[0]
	fixed := args[1 : len(args)-1]
	spread := args[len(args)-1]
	tail, ok := ListToSlice(spread)
	if !ok {
		return nil, vm.newError(ArityError, "apply expects its last argument to be a proper list", Range{})
	}
	argv := make([]*Object, 0, len(fixed)+len(tail))
	argv = append(argv, fixed...)
	argv = append(argv, tail...)
	return vm.Apply(fn, argv)
}
