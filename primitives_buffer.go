package corevm

func primBuffer(vm *VM, args []*Object) (*Object, error) {
	if len(args) > 1 {
		return nil, arityError(vm, "buffer", 1, len(args))
	}
	if len(args) == 0 {
		return vm.NewBuffer(nil), nil
	}
	if err := requireKind(vm, "buffer", args[0], KindNumber); err != nil {
		return nil, err
	}
	return vm.NewBuffer(make([]byte, int(NumberValue(args[0])))), nil
}

func primBufferAppend(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 2 {
		return nil, arityError(vm, "buffer-append!", 2, len(args))
	}
	if err := requireKind(vm, "buffer-append!", args[0], KindBuffer); err != nil {
		return nil, err
	}
	var b []byte
	switch args[1].kind {
	case KindBuffer:
		b = BufferBytes(args[1])
	case KindString:
		b = StringBytes(args[1])
	default:
		return nil, typeError(vm, "buffer-append!", "buffer or string", args[1])
	}
	if err := BufferAppend(vm, args[0], b); err != nil {
		return nil, err
	}
	return args[0], nil
}

func primBufferLength(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "buffer-length", 1, len(args))
	}
	if err := requireKind(vm, "buffer-length", args[0], KindBuffer); err != nil {
		return nil, err
	}
	return vm.NewNumber(float64(len(BufferBytes(args[0])))), nil
}

func primBufferToString(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "buffer->string", 1, len(args))
	}
	if err := requireKind(vm, "buffer->string", args[0], KindBuffer); err != nil {
		return nil, err
	}
	return vm.NewString(string(BufferBytes(args[0]))), nil
}

func primStringToBuffer(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "string->buffer", 1, len(args))
	}
	if err := requireKind(vm, "string->buffer", args[0], KindString); err != nil {
		return nil, err
	}
	return vm.NewBuffer(StringBytes(args[0])), nil
}
