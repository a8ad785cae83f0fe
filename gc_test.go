package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCReclaimsUnreachableObjects(t *testing.T) {
	vm := NewVM(nil)

	// A pair built but never bound anywhere is unreachable once we
	// stop holding a direct Go reference to it.
	_ = vm.Cons(vm.NewNumber(1), vm.NewNumber(2))
	before := len(vm.heap.pool)

	vm.collectGarbage()
	after := len(vm.heap.pool)

	assert.Less(t, after, before)
}

func TestGCKeepsReachableBindings(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`(define kept (cons 1 2))`, "<test>")
	require.NoError(t, err)

	vm.collectGarbage()

	val, err := vm.RunString(`kept`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "(1 . 2)", Print(val))
}

func TestGCMarksReachableThroughDeepSpine(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`
		(define (build n acc) (if (= n 0) acc (build (- n 1) (cons n acc))))
		(define chain (build 50000 '()))
	`, "<test>")
	require.NoError(t, err)

	vm.collectGarbage()

	val, err := vm.RunString(`(length chain)`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "50000", Print(val))
}

func TestGCIncrementsCycleCounter(t *testing.T) {
	vm := NewVM(nil)
	before := vm.gcCycles
	vm.collectGarbage()
	assert.Equal(t, before+1, vm.gcCycles)
}

func TestGCClosesPortsOnSweep(t *testing.T) {
	vm := NewVM(nil)
	stream := vm.NewMemoryStream(nil)
	port := vm.NewPort(stream, portOutput, false)
	require.False(t, portOf(port).closed)

	vm.collectGarbage()

	// The port isn't reachable from any root, so the sweep finalizes
	// (closes) it.
	assert.True(t, portOf(port).closed)
}
