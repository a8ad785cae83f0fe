package corevm

import "fmt"

// maxEvalDepth guards the explicit recursion Eval still uses for
// non-tail subexpressions (operator position, arguments, operands of
// `if`'s test, etc.); a tail-recursive call never adds a stack frame,
// so arbitrarily deep tail recursion in source is unaffected by this
// guard (§8.4).
func (vm *VM) maxEvalDepth() int { return vm.config.GetInt("eval.max_depth") }

// returnSignal implements `return`: a non-local escape bounded to the
// nearest enclosing procedure activation (§6). A given Eval call only
// converts one of these into a value if it itself bound a procedure
// (directly, or by tail-chaining into one) during its own loop --
// otherwise it propagates the signal to whichever call did.
type returnSignal struct{ value *Object }

func (r *returnSignal) Error() string { return "return outside of a procedure body" }

// Eval evaluates expr in env to completion, running the tail-call
// trampoline (§4.3) until expr reduces to a value or an escaping error.
func (vm *VM) Eval(expr, env *Object) (*Object, error) {
	return vm.evalDepth(expr, env, 0, false)
}

// evalDepth is the trampoline entry point. boundProcedure tells it
// whether the caller already established the procedure-activation
// boundary this call is completing (Apply, and a tail-chained
// continuation both pass true); fresh subexpression evaluation
// (arguments, operator position, an `if`'s test, ...) passes false so
// a `return` raised purely inside that subexpression's own nested
// special forms propagates to the activation that actually owns it
// instead of being swallowed here.
func (vm *VM) evalDepth(expr, env *Object, depth int, boundProcedure bool) (*Object, error) {
	if depth > vm.maxEvalDepth() {
		return nil, vm.newError(InternalError, "maximum evaluation depth exceeded", Range{})
	}
	val, err := vm.evalLoop(expr, env, depth, &boundProcedure)
	if err != nil {
		if rs, ok := err.(*returnSignal); ok && boundProcedure {
			return rs.value, nil
		}
		return nil, err
	}
	return val, nil
}

// evalLoop's callstack bookkeeping only pops a frame when the
// activation returns successfully (err == nil): an error leaves every
// live frame in place so the chain is still there when it reaches
// reportUncaught, which is the whole point of keeping vm.callStack at
// all (§4.8). RunString, the REPL loop (evalREPLLine) and sfCatch are
// the recovery points that reset it back down afterward.
func (vm *VM) evalLoop(expr, env *Object, depth int, boundProcedure *bool) (result *Object, err error) {
	framePushed := false
	for {
		vm.currentEnv = env

		switch expr.kind {
		case KindSymbol:
			if symIsPrimitive(expr) {
				return expr, nil
			}
			v, ok := EnvLookup(env, expr)
			if !ok {
				return nil, vm.newError(UnboundSymbol, "undefined variable "+SymbolName(expr), Range{})
			}
			return v, nil

		case KindPair:
			if expr == theNil {
				return expr, nil
			}

			if !framePushed {
				vm.callStack = append(vm.callStack, callFrame{expr: expr})
				framePushed = true
				defer func() {
					if err == nil {
						vm.callStack = vm.callStack[:len(vm.callStack)-1]
					}
				}()
			} else {
				vm.callStack[len(vm.callStack)-1] = callFrame{expr: expr}
			}
			if vm.config.GetBool("debug.coverage") {
				if m := Mapping(expr); m != nil {
					MappingHit(m)
				}
			}

			head := Car(expr)
			rest := Cdr(expr)

			if head.kind == KindSymbol {
				if handler, ok := specialForms[SymbolName(head)]; ok {
					vm.callStack[len(vm.callStack)-1].label = SymbolName(head)
					res, tailExpr, tailEnv, err := handler(vm, rest, env, depth)
					if err != nil {
						return nil, err
					}
					if tailExpr != nil {
						expr, env = tailExpr, tailEnv
						continue
					}
					return res, nil
				}
				if v, ok := EnvLookup(env, head); ok && v.kind == KindMacro {
					expanded, err := vm.applyMacro(v, rest, env, depth)
					if err != nil {
						return nil, err
					}
					expr = expanded
					continue
				}
			}

			fn, err := vm.evalDepth(head, env, depth+1, false)
			if err != nil {
				return nil, err
			}

			// fn and argv live only in these Go locals until applyTail
			// hands them off to a new call frame; root them on the
			// value stack so a GC triggered while evaluating a later
			// argument (or inside applyTail itself) can't sweep them
			// out from under an evaluation still in flight (§4.7).
			release := vm.protect(fn)
			argv, err := vm.evalArgs(rest, env, depth)
			if err != nil {
				release()
				return nil, err
			}

			if fn.kind == KindProcedure {
				*boundProcedure = true
			}
			vm.callStack[len(vm.callStack)-1].label = describeFn(fn)
			result, tailExpr, tailEnv, err := vm.applyTail(fn, argv)
			release()
			if err != nil {
				return nil, err
			}
			if tailExpr != nil {
				expr, env = tailExpr, tailEnv
				continue
			}
			return result, nil

		default:
			return expr, nil
		}
	}
}

// evalArgs evaluates a reader-built argument list left to right. When
// the list is itself a literal (is_list set) and every car is
// self-evaluating, the spine is reused verbatim as the evaluated value
// list instead of consing a fresh one (§4.3's constant-pair sharing).
func (vm *VM) evalArgs(list *Object, env *Object, depth int) ([]*Object, error) {
	if list == theNil {
		return nil, nil
	}
	if list.kind != KindPair || !list.has(flagIsList) {
		items, ok := ListToSlice(list)
		if !ok {
			return nil, vm.newError(TypeError, "improper list in application position", Range{})
		}
		return vm.evalItems(items, env, depth)
	}
	shareable := true
	cur := list
	for cur != theNil {
		if !Car(cur).selfEvaluating() {
			shareable = false
			break
		}
		cur = Cdr(cur)
	}
	items, _ := ListToSlice(list)
	if shareable {
		for _, v := range items {
			vm.stack.push(v)
		}
		return items, nil
	}
	return vm.evalItems(items, env, depth)
}

// evalItems evaluates items left to right, pushing each result onto the
// value stack as soon as it's computed (and leaving it there) so that
// earlier results stay rooted while evaluating the rest -- otherwise an
// allocation triggered by argument N+1 could sweep an already-evaluated
// argument N that exists only in the out slice below. The caller is
// responsible for popping everything this leaves behind once it is done
// with the returned slice.
func (vm *VM) evalItems(items []*Object, env *Object, depth int) ([]*Object, error) {
	base := vm.stack.depth()
	out := make([]*Object, len(items))
	for i, item := range items {
		v, err := vm.evalDepth(item, env, depth+1, false)
		if err != nil {
			vm.stack.truncate(base)
			return nil, err
		}
		out[i] = v
		vm.stack.push(v)
	}
	return out, nil
}

// applyTail applies fn to argv. When fn is a compound Procedure, it
// returns a (tailExpr, tailEnv) pair instead of recursing: the caller's
// trampoline loop rebinds and continues there rather than growing the
// Go call stack (§4.3).
func (vm *VM) applyTail(fn *Object, argv []*Object) (*Object, *Object, *Object, error) {
	switch fn.kind {
	case KindSymbol:
		if symIsPrimitive(fn) {
			pf, ok := primitiveTable[SymbolName(fn)]
			if !ok {
				return nil, nil, nil, vm.newError(InternalError, "unregistered primitive "+SymbolName(fn), Range{})
			}
			v, err := pf(vm, argv)
			return v, nil, nil, err
		}
		return nil, nil, nil, vm.newError(TypeError, fmt.Sprintf("%s is not callable", fn.Kind()), Range{})
	case KindNativeProcedure:
		v, err := NativeFn(fn)(vm, argv)
		return v, nil, nil, err
	case KindProcedure:
		callEnv, err := vm.bindProcedure(fn, argv)
		if err != nil {
			return nil, nil, nil, err
		}
		tailExpr, tailEnv, err := vm.evalBodyTail(ProcBody(fn), callEnv)
		return nil, tailExpr, tailEnv, err
	case KindEnvironment:
		return nil, nil, nil, vm.newError(TypeError, "environment is not method-callable here", Range{})
	default:
		return nil, nil, nil, vm.newError(TypeError, fmt.Sprintf("%s is not callable", fn.Kind()), Range{})
	}
}

// Apply fully applies fn to argv, running the tail-call trampoline to
// completion. This is the entry point native procedures use to call
// back into Lisp code (e.g. `map`, `filter`).
func (vm *VM) Apply(fn *Object, argv []*Object) (*Object, error) {
	release := vm.protect(append([]*Object{fn}, argv...)...)
	val, tailExpr, tailEnv, err := vm.applyTail(fn, argv)
	release()
	if err != nil {
		if rs, ok := err.(*returnSignal); ok {
			return rs.value, nil
		}
		return nil, err
	}
	if tailExpr == nil {
		return val, nil
	}
	return vm.evalDepth(tailExpr, tailEnv, 0, true)
}

func (vm *VM) bindProcedure(fn *Object, argv []*Object) (*Object, error) {
	env := vm.NewEnvironment(ProcEnv(fn))
	// env accumulates bindings one formal at a time below, and isn't
	// reachable from any root until its caller installs it as the
	// trampoline's current env; protect it so an &optional/&key default
	// expression that triggers a GC can't lose the formals already bound.
	release := vm.protect(env)
	defer release()
	if err := bindFormals(vm, ProcFormals(fn), argv, env, fn); err != nil {
		return nil, err
	}
	return env, nil
}

// bindFormals destructures argv against formals into env, honoring the
// &label/&optional/&rest/&key modifiers (§6).
func bindFormals(vm *VM, formals *Object, argv []*Object, env, self *Object) error {
	mode := ""
	i := 0
	cur := formals
	for cur != theNil && cur.kind == KindPair {
		item := Car(cur)
		cur = Cdr(cur)

		if item.kind == KindSymbol {
			switch SymbolName(item) {
			case "&optional":
				mode = "optional"
				continue
			case "&rest":
				mode = "rest"
				continue
			case "&key":
				mode = "key"
				continue
			case "&label":
				mode = "label"
				continue
			}
		}

		switch mode {
		case "label":
			if err := EnvDefine(vm, env, item, self); err != nil {
				return err
			}
			mode = ""

		case "rest":
			if err := EnvDefine(vm, env, item, vm.SliceToList(argv[minInt(i, len(argv)):])); err != nil {
				return err
			}
			i = len(argv)

		case "optional", "key":
			sym := item
			var defaultExpr *Object
			if item.kind == KindPair {
				sym = Car(item)
				if d := Cdr(item); d != theNil {
					defaultExpr = Car(d)
				}
			}
			var value *Object
			if i < len(argv) {
				value = argv[i]
				i++
			} else if defaultExpr != nil {
				v, err := vm.evalDepth(defaultExpr, env, 0, false)
				if err != nil {
					return err
				}
				value = v
			} else {
				value = theUndef
			}
			if err := EnvDefine(vm, env, sym, value); err != nil {
				return err
			}

		default:
			if i >= len(argv) {
				return vm.newError(ArityError, "too few arguments to "+describeCallable(self), Range{})
			}
			if err := EnvDefine(vm, env, item, argv[i]); err != nil {
				return err
			}
			i++
		}
	}
	if cur != theNil {
		if err := EnvDefine(vm, env, cur, vm.SliceToList(argv[minInt(i, len(argv)):])); err != nil {
			return err
		}
		i = len(argv)
	} else if i < len(argv) {
		return vm.newError(ArityError, "too many arguments to "+describeCallable(self), Range{})
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// describeFn labels fn for the callstack printer (§4.8), by whichever
// Kind it actually is -- bindFormals' arity errors only ever see an
// already-known-compound procedure, but the callstack records whatever
// the application position evaluated to.
func describeFn(fn *Object) string {
	switch fn.kind {
	case KindProcedure, KindMacro:
		return describeCallable(fn)
	case KindNativeProcedure:
		return NativeName(fn)
	case KindSymbol:
		if symIsPrimitive(fn) {
			return SymbolName(fn)
		}
		return fn.Kind().String()
	default:
		return fn.Kind().String()
	}
}

func describeCallable(o *Object) string {
	if o == nil {
		return "procedure"
	}
	if label := ProcLabel(o); label != "" {
		return label
	}
	return "anonymous procedure"
}

// evalBodyTail evaluates every form in body except the last (which is
// returned unevaluated as the tail position). Non-tail forms run with
// boundProcedure=false: a bare `return` nested only inside ordinary
// special forms (not a further procedure call) propagates past this
// call uncaught, to be converted by whichever activation this body
// belongs to.
func (vm *VM) evalBodyTail(body, env *Object) (*Object, *Object, error) {
	if body == theNil {
		return nil, nil, nil
	}
	items, ok := ListToSlice(body)
	if !ok {
		return nil, nil, vm.newError(TypeError, "improper procedure body", Range{})
	}
	for _, form := range items[:len(items)-1] {
		if _, err := vm.evalDepth(form, env, 0, false); err != nil {
			return nil, nil, err
		}
	}
	return items[len(items)-1], env, nil
}

// applyMacro expands a macro call: the unevaluated argument list is
// bound like a procedure call, its body evaluated for a *form*, and
// that form is evaluated again in the caller's own environment so
// macros expand in place (§4.4).
func (vm *VM) applyMacro(macro, rawArgs, callerEnv *Object, depth int) (*Object, error) {
	items, ok := ListToSlice(rawArgs)
	if !ok {
		return nil, vm.newError(TypeError, "improper macro argument list", Range{})
	}
	pseudoProc := &Object{kind: KindProcedure, owner: macro.owner, flags: macro.flags, payload: macro.payload}
	macroEnv, err := vm.bindProcedure(pseudoProc, items)
	if err != nil {
		return nil, err
	}
	tailExpr, tailEnv, err := vm.evalBodyTail(ProcBody(macro), macroEnv)
	if err != nil {
		if rs, ok := err.(*returnSignal); ok {
			return rs.value, nil
		}
		return nil, err
	}
	if tailExpr == nil {
		return theUndef, nil
	}
	form, err := vm.evalDepth(tailExpr, tailEnv, depth+1, true)
	if err != nil {
		return nil, err
	}
	_ = callerEnv
	return form, nil
}

// specialFormHandler evaluates a special form's unevaluated argument
// list. Returning a non-nil tailExpr/tailEnv asks the trampoline to
// continue evaluating there instead of recursing.
type specialFormHandler func(vm *VM, args, env *Object, depth int) (value, tailExpr, tailEnv *Object, err error)

var specialForms map[string]specialFormHandler

func init() {
	specialForms = map[string]specialFormHandler{
		"quote":       sfQuote,
		"quasiquote":  sfQuasiquote,
		"if":          sfIf,
		"cond":        sfCond,
		"case":        sfCase,
		"match":       sfMatch,
		"let":         sfLet,
		"begin":       sfBegin,
		"lambda":      sfLambda,
		"define":      sfDefine,
		"defconst":    sfDefconst,
		"defmacro":    sfDefmacro,
		"defmethod":   sfDefmethod,
		"and":         sfAnd,
		"or":          sfOr,
		"set!":        sfSet,
		"catch":       sfCatch,
		"throw":       sfThrow,
		"return":      sfReturn,
		"debug":       sfDebug,
		"with-input":  sfWithInput,
		"with-output": sfWithOutput,
		"consq":       sfConsq,
	}
}

func sfQuote(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	return Car(args), nil, nil, nil
}

func sfIf(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	test, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	rest := Cdr(args)
	if Truthy(test) {
		return nil, Car(rest), env, nil
	}
	elseRest := Cdr(rest)
	if elseRest == theNil {
		return theUndef, nil, nil, nil
	}
	return nil, Car(elseRest), env, nil
}

func sfBegin(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	if args == theNil {
		return theUndef, nil, nil, nil
	}
	tailExpr, tailEnv, err := vm.evalBodyTail(args, env)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, tailExpr, tailEnv, nil
}

// sfCond evaluates clauses (test body...) in order; `else` as a test
// always matches. The matched clause's body tail-evaluates.
func sfCond(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	elseSym := vm.Intern("else")
	cur := args
	for cur != theNil {
		clause := Car(cur)
		cur = Cdr(cur)
		test := Car(clause)
		var matched bool
		if test.kind == KindSymbol && test == elseSym {
			matched = true
		} else {
			v, err := vm.evalDepth(test, env, depth+1, false)
			if err != nil {
				return nil, nil, nil, err
			}
			matched = Truthy(v)
		}
		if matched {
			body := Cdr(clause)
			if body == theNil {
				return theUndef, nil, nil, nil
			}
			return sfBegin(vm, body, env, depth)
		}
	}
	return theUndef, nil, nil, nil
}

// sfCase dispatches on the value of its first argument against a set
// of `(values... body...)` clauses, compared with Equal; `else`
// matches unconditionally.
func sfCase(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	key, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	elseSym := vm.Intern("else")
	cur := Cdr(args)
	for cur != theNil {
		clause := Car(cur)
		cur = Cdr(cur)
		values := Car(clause)
		body := Cdr(clause)
		if values.kind == KindSymbol && values == elseSym {
			return sfBegin(vm, body, env, depth)
		}
		items, _ := ListToSlice(values)
		for _, v := range items {
			if Equal(v, key) {
				return sfBegin(vm, body, env, depth)
			}
		}
	}
	return theUndef, nil, nil, nil
}

// sfMatch is a small structural matcher: each clause is (pattern
// body...). A symbol pattern binds unconditionally (`_` binds and
// discards); a literal pattern must Equal the subject; a pair pattern
// recurses over car/cdr.
func sfMatch(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	subject, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	cur := Cdr(args)
	for cur != theNil {
		clause := Car(cur)
		cur = Cdr(cur)
		pattern := Car(clause)
		body := Cdr(clause)
		matchEnv := vm.NewEnvironment(env)
		if matchPattern(vm, pattern, subject, matchEnv) {
			return sfBegin(vm, body, matchEnv, depth)
		}
	}
	return nil, nil, nil, vm.newError(TypeError, "no matching clause", Range{})
}

func matchPattern(vm *VM, pattern, subject, env *Object) bool {
	switch pattern.kind {
	case KindSymbol:
		if SymbolName(pattern) == "_" {
			return true
		}
		_ = EnvDefine(vm, env, pattern, subject)
		return true
	case KindPair:
		if pattern == theNil {
			return subject == theNil
		}
		if subject.kind != KindPair || subject == theNil {
			return false
		}
		return matchPattern(vm, Car(pattern), Car(subject), env) &&
			matchPattern(vm, Cdr(pattern), Cdr(subject), env)
	default:
		return Equal(pattern, subject)
	}
}

// sfLet evaluates each binding's init form in the *outer* environment
// (no mutual recursion between bindings), then tail-evaluates the body
// in a fresh frame.
func sfLet(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	bindings, ok := ListToSlice(Car(args))
	if !ok {
		return nil, nil, nil, vm.newError(TypeError, "malformed let bindings", Range{})
	}
	newEnv := vm.NewEnvironment(env)
	// newEnv only becomes a root once sfBegin hands it back to the
	// trampoline as tailEnv; protect it across the binding loop so a GC
	// triggered by a later init form can't lose values already bound.
	release := vm.protect(newEnv)
	defer release()
	for _, b := range bindings {
		sym := Car(b)
		initForm := Cdr(b)
		var value *Object = theUndef
		if initForm != theNil {
			v, err := vm.evalDepth(Car(initForm), env, depth+1, false)
			if err != nil {
				return nil, nil, nil, err
			}
			value = v
		}
		if err := EnvDefine(vm, newEnv, sym, value); err != nil {
			return nil, nil, nil, err
		}
	}
	return sfBegin(vm, Cdr(args), newEnv, depth)
}

func sfLambda(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	formals := Car(args)
	body := Cdr(args)
	return vm.NewProcedure(env, formals, body, ""), nil, nil, nil
}

func sfDefine(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	target := Car(args)
	if target.kind == KindPair {
		name := Car(target)
		formals := Cdr(target)
		body := Cdr(args)
		proc := vm.NewProcedure(env, formals, body, SymbolName(name))
		if err := EnvDefine(vm, env, name, proc); err != nil {
			return nil, nil, nil, err
		}
		return name, nil, nil, nil
	}
	env.set(flagNoDef)
	v, err := vm.evalDepth(Car(Cdr(args)), env, depth+1, false)
	env.clear(flagNoDef)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := EnvDefine(vm, env, target, v); err != nil {
		return nil, nil, nil, err
	}
	return target, nil, nil, nil
}

func sfDefconst(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	sym := Car(args)
	v, err := vm.evalDepth(Car(Cdr(args)), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := EnvDefconst(vm, env, sym, v); err != nil {
		return nil, nil, nil, err
	}
	return sym, nil, nil, nil
}

func sfDefmacro(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	target := Car(args)
	name := Car(target)
	formals := Cdr(target)
	body := Cdr(args)
	macro := vm.NewMacro(env, formals, body, SymbolName(name))
	if err := EnvDefine(vm, env, name, macro); err != nil {
		return nil, nil, nil, err
	}
	return name, nil, nil, nil
}

func sfDefmethod(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	target := Car(args)
	name := Car(target)
	formals := Cdr(target)
	body := Cdr(args)
	proc := vm.NewProcedure(env, formals, body, SymbolName(name))
	if err := EnvDefmethod(vm, env, name, proc); err != nil {
		return nil, nil, nil, err
	}
	return name, nil, nil, nil
}

func sfAnd(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	if args == theNil {
		return theTrue, nil, nil, nil
	}
	items, _ := ListToSlice(args)
	for _, form := range items[:len(items)-1] {
		v, err := vm.evalDepth(form, env, depth+1, false)
		if err != nil {
			return nil, nil, nil, err
		}
		if !Truthy(v) {
			return v, nil, nil, nil
		}
	}
	return nil, items[len(items)-1], env, nil
}

func sfOr(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	if args == theNil {
		return theFalse, nil, nil, nil
	}
	items, _ := ListToSlice(args)
	for _, form := range items[:len(items)-1] {
		v, err := vm.evalDepth(form, env, depth+1, false)
		if err != nil {
			return nil, nil, nil, err
		}
		if Truthy(v) {
			return v, nil, nil, nil
		}
	}
	return nil, items[len(items)-1], env, nil
}

func sfSet(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	sym := Car(args)
	v, err := vm.evalDepth(Car(Cdr(args)), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := EnvSet(vm, env, sym, v); err != nil {
		return nil, nil, nil, err
	}
	return v, nil, nil, nil
}

// sfCatch implements §8.9: regardless of whether the body raises, the
// value-stack depth and current-environment pointer are restored to
// their pre-catch values. A `return` escaping the body passes through
// untouched -- `catch` only intercepts the VMError taxonomy.
func sfCatch(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	savedDepth := vm.stack.depth()
	savedEnv := vm.currentEnv
	savedCallDepth := len(vm.callStack)

	tailExpr, tailEnv, err := vm.evalBodyTail(args, env)
	var val *Object
	if err == nil {
		if tailExpr == nil {
			val = theUndef
		} else {
			val, err = vm.evalDepth(tailExpr, tailEnv, depth+1, false)
		}
	}

	vm.stack.truncate(savedDepth)
	vm.currentEnv = savedEnv
	if len(vm.callStack) > savedCallDepth {
		vm.callStack = vm.callStack[:savedCallDepth]
	}

	if err != nil {
		ve, ok := err.(*VMError)
		if !ok {
			return nil, nil, nil, err
		}
		if ve.Kind == UserThrow {
			return ve.Payload, nil, nil, nil
		}
		return vm.Cons(vm.Intern("error"), vm.NewString(ve.Error())), nil, nil, nil
	}
	return val, nil, nil, nil
}

func sfThrow(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	v, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, nil, nil, vm.newThrow(v)
}

func sfReturn(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	v := theUndef
	if args != theNil {
		val, err := vm.evalDepth(Car(args), env, depth+1, false)
		if err != nil {
			return nil, nil, nil, err
		}
		v = val
	}
	return nil, nil, nil, &returnSignal{value: v}
}

// sfDebug drops into the debug-on-error sub-REPL on demand (§4.8),
// rather than only after an uncaught error.
func sfDebug(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	vm.runDebugREPL(env)
	return theUndef, nil, nil, nil
}

// sfWithInput/sfWithOutput dynamically rebind *stdin*/*stdout* for the
// duration of body, restoring the previous port even if body raises.
func sfWithInput(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	return vm.withDynamicPort(args, env, depth, &vm.stdin)
}

func sfWithOutput(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	return vm.withDynamicPort(args, env, depth, &vm.stdout)
}

func (vm *VM) withDynamicPort(args, env *Object, depth int, slot **Object) (*Object, *Object, *Object, error) {
	port, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	prev := *slot
	*slot = port
	bodyExpr := vm.SliceToList(append([]*Object{vm.Intern("begin")}, mustSlice(Cdr(args))...))
	val, berr := vm.evalDepth(bodyExpr, env, depth+1, false)
	*slot = prev
	if berr != nil {
		return nil, nil, nil, berr
	}
	return val, nil, nil, nil
}

func mustSlice(o *Object) []*Object {
	items, _ := ListToSlice(o)
	return items
}

// sfConsq implements the reader's top-level `:` desugaring target:
// `: a b` parses as `(consq a b)` and conses the two evaluated forms.
func sfConsq(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	a, err := vm.evalDepth(Car(args), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	b, err := vm.evalDepth(Car(Cdr(args)), env, depth+1, false)
	if err != nil {
		return nil, nil, nil, err
	}
	return vm.Cons(a, b), nil, nil, nil
}

// sfQuasiquote expands `...` forms, splicing `,@` sublists and
// substituting `,` subforms, evaluated in env.
func sfQuasiquote(vm *VM, args, env *Object, depth int) (*Object, *Object, *Object, error) {
	v, err := vm.quasiExpand(Car(args), env, depth, 1)
	if err != nil {
		return nil, nil, nil, err
	}
	return v, nil, nil, nil
}

func (vm *VM) quasiExpand(form, env *Object, depth, level int) (*Object, error) {
	if form.kind != KindPair || form == theNil {
		return form, nil
	}
	head := Car(form)
	if head.kind == KindSymbol {
		switch head {
		case unquoteSym:
			if level == 1 {
				return vm.evalDepth(Car(Cdr(form)), env, depth+1, false)
			}
			inner, err := vm.quasiExpand(Car(Cdr(form)), env, depth, level-1)
			if err != nil {
				return nil, err
			}
			return vm.SliceToList([]*Object{unquoteSym, inner}), nil
		case quasiSym:
			inner, err := vm.quasiExpand(Car(Cdr(form)), env, depth, level+1)
			if err != nil {
				return nil, err
			}
			return vm.SliceToList([]*Object{quasiSym, inner}), nil
		}
	}
	// items accumulates in this Go local across however many recursive
	// quasiExpand/eval calls the spine needs; protect each element as
	// it's added so a later splice's allocation can't sweep an earlier
	// one out before the whole spine is assembled (§4.7).
	base := vm.stack.depth()
	defer vm.stack.truncate(base)
	var items []*Object
	cur := form
	for cur.kind == KindPair && cur != theNil {
		elem := Car(cur)
		if elem.kind == KindPair && elem != theNil && Car(elem) == unquoteSplS && level == 1 {
			spliced, err := vm.evalDepth(Car(Cdr(elem)), env, depth+1, false)
			if err != nil {
				return nil, err
			}
			sItems, ok := ListToSlice(spliced)
			if !ok {
				return nil, vm.newError(TypeError, "unquote-splicing requires a list", Range{})
			}
			for _, it := range sItems {
				vm.stack.push(it)
			}
			items = append(items, sItems...)
		} else {
			v, err := vm.quasiExpand(elem, env, depth, level)
			if err != nil {
				return nil, err
			}
			vm.stack.push(v)
			items = append(items, v)
		}
		cur = Cdr(cur)
	}
	tail := cur
	if tail == theNil {
		return vm.SliceToList(items), nil
	}
	expandedTail, err := vm.quasiExpand(tail, env, depth, level)
	if err != nil {
		return nil, err
	}
	result := expandedTail
	for i := len(items) - 1; i >= 0; i-- {
		result = vm.Cons(items[i], result)
	}
	return result, nil
}
