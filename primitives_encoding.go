package corevm

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/mr-tron/base58"
)

// bytesOf accepts either a Buffer or a String as a byte source, the way
// every base-conversion primitive in §8.8 is documented to.
func bytesOf(vm *VM, name string, o *Object) ([]byte, error) {
	switch o.kind {
	case KindBuffer:
		return BufferBytes(o), nil
	case KindString:
		return StringBytes(o), nil
	default:
		return nil, typeError(vm, name, "buffer or string", o)
	}
}

func primHexEncode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "hex-encode", 1, len(args))
	}
	b, err := bytesOf(vm, "hex-encode", args[0])
	if err != nil {
		return nil, err
	}
	return vm.NewString(hex.EncodeToString(b)), nil
}

func primHexDecode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "hex-decode", 1, len(args))
	}
	if err := requireKind(vm, "hex-decode", args[0], KindString); err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(StringValue(args[0]))
	if err != nil {
		return nil, vm.newError(RangeError, "invalid hex input: "+err.Error(), Range{})
	}
	return vm.NewBuffer(b), nil
}

func primBase64Encode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "base64-encode", 1, len(args))
	}
	b, err := bytesOf(vm, "base64-encode", args[0])
	if err != nil {
		return nil, err
	}
	return vm.NewString(base64.StdEncoding.EncodeToString(b)), nil
}

func primBase64Decode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "base64-decode", 1, len(args))
	}
	if err := requireKind(vm, "base64-decode", args[0], KindString); err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(StringValue(args[0]))
	if err != nil {
		return nil, vm.newError(RangeError, "invalid base64 input: "+err.Error(), Range{})
	}
	return vm.NewBuffer(b), nil
}

func primBase58Encode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "base58-encode", 1, len(args))
	}
	b, err := bytesOf(vm, "base58-encode", args[0])
	if err != nil {
		return nil, err
	}
	return vm.NewString(base58.Encode(b)), nil
}

func primBase58Decode(vm *VM, args []*Object) (*Object, error) {
	if len(args) != 1 {
		return nil, arityError(vm, "base58-decode", 1, len(args))
	}
	if err := requireKind(vm, "base58-decode", args[0], KindString); err != nil {
		return nil, err
	}
	b, err := base58.Decode(StringValue(args[0]))
	if err != nil {
		return nil, vm.newError(RangeError, "invalid base58 input: "+err.Error(), Range{})
	}
	return vm.NewBuffer(b), nil
}
