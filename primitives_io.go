package corevm

import "io"

func outputPort(vm *VM, args []*Object, minArgs int) (*Object, []*Object, error) {
	if len(args) < minArgs {
		return nil, nil, arityError(vm, "write", minArgs, len(args))
	}
	if len(args) > minArgs {
		port := args[minArgs]
		if err := requireKind(vm, "write", port, KindPort); err != nil {
			return nil, nil, err
		}
		return port, args[:minArgs], nil
	}
	return vm.stdout, args[:minArgs], nil
}

func primWrite(vm *VM, args []*Object) (*Object, error) {
	port, rest, err := outputPort(vm, args, 1)
	if err != nil {
		return nil, err
	}
	if err := vm.WriteBytes(port, []byte(Print(rest[0]))); err != nil {
		return nil, vm.newError(IOError, err.Error(), Range{})
	}
	return theUndef, nil
}

func primPrint(vm *VM, args []*Object) (*Object, error) {
	return primWrite(vm, args)
}

func primPrintln(vm *VM, args []*Object) (*Object, error) {
	port, rest, err := outputPort(vm, args, 1)
	if err != nil {
		return nil, err
	}
	if err := vm.WriteBytes(port, []byte(Print(rest[0])+"\n")); err != nil {
		return nil, vm.newError(IOError, err.Error(), Range{})
	}
	return theUndef, nil
}

func primWriteLine(vm *VM, args []*Object) (*Object, error) {
	port, rest, err := outputPort(vm, args, 1)
	if err != nil {
		return nil, err
	}
	if err := requireKind(vm, "write-line", rest[0], KindString); err != nil {
		return nil, err
	}
	if err := vm.WriteBytes(port, append(StringBytes(rest[0]), '\n')); err != nil {
		return nil, vm.newError(IOError, err.Error(), Range{})
	}
	return theUndef, nil
}

func inputPort(vm *VM, args []*Object) (*Object, error) {
	if len(args) == 0 {
		return vm.stdin, nil
	}
	if err := requireKind(vm, "read", args[0], KindPort); err != nil {
		return nil, err
	}
	return args[0], nil
}

func primReadLine(vm *VM, args []*Object) (*Object, error) {
	port, err := inputPort(vm, args)
	if err != nil {
		return nil, err
	}
	var line []byte
	for {
		b, rerr := vm.ReadByte(port)
		if rerr != nil {
			if rerr == io.EOF {
				if len(line) == 0 {
					return theEOF, nil
				}
				break
			}
			return nil, vm.newError(IOError, rerr.Error(), Range{})
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
	}
	return vm.NewString(string(line)), nil
}

// primRead reads the first complete form from port, draining whatever
// is currently available from its stream into a fresh Reader. Only one
// `read` per port's remaining contents is supported: bytes past the
// first form are not replayed to a later call.
func primRead(vm *VM, args []*Object) (*Object, error) {
	port, err := inputPort(vm, args)
	if err != nil {
		return nil, err
	}
	var buf []byte
	for {
		b, rerr := vm.ReadByte(port)
		if rerr != nil {
			break
		}
		buf = append(buf, b)
	}
	if len(buf) == 0 {
		return theEOF, nil
	}
	r := vm.NewReader(string(buf), "")
	form, ok, rerr := r.ReadOne()
	if rerr != nil {
		return nil, rerr
	}
	if !ok {
		return theEOF, nil
	}
	return form, nil
}

func primFlush(vm *VM, args []*Object) (*Object, error) {
	port := vm.stdout
	if len(args) > 0 {
		if err := requireKind(vm, "flush", args[0], KindPort); err != nil {
			return nil, err
		}
		port = args[0]
	}
	if err := vm.FlushPort(port); err != nil {
		return nil, vm.newError(IOError, err.Error(), Range{})
	}
	return theUndef, nil
}

func primClose(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "close", 1, len(args))
	}
	if err := requireKind(vm, "close", args[0], KindPort); err != nil {
		return nil, err
	}
	if err := portOf(args[0]).close(); err != nil {
		return nil, vm.newError(IOError, err.Error(), Range{})
	}
	return theUndef, nil
}

// primReady reports whether a read from port would return data without
// blocking. The underlying Stream's Ready callback is consulted
// directly; a stream exposing none is always considered ready, matching
// a plain in-memory buffer's always-available semantics.
func primReady(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "ready?", 1, len(args))
	}
	if err := requireKind(vm, "ready?", args[0], KindPort); err != nil {
		return nil, err
	}
	p := portOf(args[0])
	if p.readPos < p.readLen {
		return theTrue, nil
	}
	s := streamOf(p.stream)
	if s.vtable.Ready == nil {
		return theTrue, nil
	}
	return boolObj(s.vtable.Ready(s.context)), nil
}
