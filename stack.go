package corevm

// valueStack is the evaluator's explicit operand/frame stack (§4.7,
// §8.9): every Object the evaluator is currently holding onto mid-
// expression -- partially evaluated argument lists, saved
// continuations of a `catch` block, frames kept alive across a
// tail call -- lives here so the garbage collector can find it as a
// root without walking the Go call stack.
type valueStack struct {
	values []*Object
}

func newValueStack(capacity int) *valueStack {
	return &valueStack{values: make([]*Object, 0, capacity)}
}

func (s *valueStack) push(o *Object) { s.values = append(s.values, o) }

func (s *valueStack) pop() *Object {
	n := len(s.values) - 1
	v := s.values[n]
	s.values = s.values[:n]
	return v
}

func (s *valueStack) depth() int { return len(s.values) }

// truncate restores the stack to a previously recorded depth, the way
// `catch` rewinds past whatever the protected expression pushed before
// raising, and the way a tail call discards the outgoing frame's
// pending operands before rebinding (§8.9).
func (s *valueStack) truncate(depth int) { s.values = s.values[:depth] }

// protect roots objs on the value stack for the duration of a call that
// may itself allocate (and so may trigger a GC cycle), returning a func
// that unwinds the stack back to the depth recorded before the push.
// Anything held only in a Go local across such a call is otherwise
// invisible to collectGarbage's root walk (§4.7, §8.3).
func (vm *VM) protect(objs ...*Object) func() {
	depth := vm.stack.depth()
	for _, o := range objs {
		vm.stack.push(o)
	}
	return func() { vm.stack.truncate(depth) }
}
