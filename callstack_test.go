package corevm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStderr swaps vm's error port for an in-memory one and returns
// a function that reads back whatever was written to it.
func captureStderr(vm *VM) func() string {
	stream := vm.NewMemoryStream(nil)
	vm.stderr = vm.NewPort(stream, portOutput, false)
	ctx := streamOf(stream).context.(*memStreamCtx)
	return func() string { return ctx.buf.String() }
}

func TestCallstackRendersFrameOnUncaughtError(t *testing.T) {
	vm := NewVM(nil)
	readStderr := captureStderr(vm)

	_, err := vm.RunString(`
		(define (boom) (car 5))
		(boom)
	`, "script.lsp")
	require.Error(t, err)

	// (boom) tail-calls (car 5), which rewrites boom's frame in place,
	// so the reported frame is the one for car.
	assert.Contains(t, readStderr(), "at car")
	// The recovery point (RunString) resets the backtrace once it has
	// been reported, so a later top-level form starts clean.
	assert.Empty(t, vm.callStack)
}

func TestCallstackBoundedDepthDuringTailRecursion(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`
		(define (count-down n)
		  (if (= n 0)
		      (car 5)
		      (count-down (- n 1))))
	`, "script.lsp")
	require.NoError(t, err)

	form := readOneForm(t, vm, `(count-down 5000)`)
	_, evalErr := vm.Eval(form, vm.currentEnv)
	require.Error(t, evalErr)

	// A tail-recursive self-call rewrites its own frame in place
	// (§8.4): the reported backtrace never grows past the handful of
	// live, non-tail activations, regardless of recursion depth.
	assert.LessOrEqual(t, len(vm.callStack), 3)
}

func readOneForm(t *testing.T, vm *VM, src string) *Object {
	t.Helper()
	form, ok, err := vm.NewReader(src, "").ReadOne()
	require.NoError(t, err)
	require.True(t, ok)
	return form
}

func TestSourceExcerptCutsAtNewline(t *testing.T) {
	vm := NewVM(nil)
	src := "(car 5)\n(boom boom boom)\n"
	r := vm.NewReader(src, "script.lsp")
	form, ok, err := r.ReadOne()
	require.NoError(t, err)
	require.True(t, ok)

	m := Mapping(form)
	require.NotNil(t, m)

	excerpt := sourceExcerpt(m)
	assert.Equal(t, "(car 5)", excerpt)
	assert.False(t, strings.Contains(excerpt, "boom"))
}

func TestCatchResetsCallstackOnRecovery(t *testing.T) {
	vm := NewVM(nil)
	val, err := vm.RunString(`(catch (car 5))`, "<test>")
	require.NoError(t, err)
	assert.Contains(t, Print(val), "error")
	assert.Empty(t, vm.callStack)
}
