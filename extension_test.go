package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyCounter is a minimal host extension: a mutable counter exposed to
// Lisp code as an Extension object, with native procedures to read and
// bump it, and a finalizer that records whether the GC reclaimed it.
type toyCounter struct {
	n         int
	finalized bool
}

func registerToyCounter(vm *VM, c *toyCounter) *Object {
	ext := vm.NewExtensionObject("toy-counter", c, func(ptr any) {
		ptr.(*toyCounter).finalized = true
	})

	_ = vm.RegisterNative("toy-counter-get", func(vm *VM, args []*Object) (*Object, error) {
		if len(args) != 1 || args[0].kind != KindExtension {
			return nil, arityError(vm, "toy-counter-get", 1, len(args))
		}
		return vm.NewNumber(float64(ExtensionPtr(args[0]).(*toyCounter).n)), nil
	})
	_ = vm.RegisterNative("toy-counter-bump!", func(vm *VM, args []*Object) (*Object, error) {
		if len(args) != 1 || args[0].kind != KindExtension {
			return nil, arityError(vm, "toy-counter-bump!", 1, len(args))
		}
		ExtensionPtr(args[0]).(*toyCounter).n++
		return theUndef, nil
	})
	return ext
}

func TestExtensionRegistrationAndNativeProcedures(t *testing.T) {
	vm := NewVM(nil)
	c := &toyCounter{}
	ext := registerToyCounter(vm, c)

	require.NoError(t, EnvDefine(vm, vm.rootEnv, vm.Intern("counter"), ext))

	val, err := vm.RunString(`(toy-counter-bump! counter) (toy-counter-bump! counter) (toy-counter-get counter)`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "2", Print(val))
	assert.Equal(t, 2, c.n)
}

func TestExtensionFinalizesOnSweep(t *testing.T) {
	vm := NewVM(nil)
	c := &toyCounter{}
	_ = vm.NewExtensionObject("toy-counter", c, func(ptr any) {
		ptr.(*toyCounter).finalized = true
	})

	vm.collectGarbage()
	assert.True(t, c.finalized)
}

func TestExtensionClassAndIDAreStable(t *testing.T) {
	vm := NewVM(nil)
	ext := vm.NewExtensionObject("toy-counter", &toyCounter{}, nil)
	assert.Equal(t, "toy-counter", ExtensionClass(ext))
	assert.NotEmpty(t, ExtensionID(ext))
}
