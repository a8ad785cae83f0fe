package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNativeBindsCallableProcedure(t *testing.T) {
	vm := NewVM(nil)
	require.NoError(t, vm.RegisterNative("double", func(vm *VM, args []*Object) (*Object, error) {
		if len(args) != 1 {
			return nil, arityError(vm, "double", 1, len(args))
		}
		return vm.NewNumber(NumberValue(args[0]) * 2), nil
	}))

	val, err := vm.RunString(`(double 21)`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "42", Print(val))
}

func TestCoverageReportCountsHits(t *testing.T) {
	cfg := NewConfig()
	cfg.SetBool("debug.coverage", true)
	vm := NewVM(cfg)

	_, err := vm.RunString("(define (f x) (+ x 1))\n(f 1)\n(f 2)\n", "prog.lsp")
	require.NoError(t, err)

	report := vm.CoverageReport()
	ranges, ok := report["prog.lsp"]
	require.True(t, ok)
	require.NotEmpty(t, ranges)

	var total int
	for _, r := range ranges {
		total += r.Hits
	}
	assert.Greater(t, total, 0)
}

func TestEvalEvaluatesDataAsCode(t *testing.T) {
	val, _ := evalString(t, `(eval (list (quote +) 1 2))`)
	assert.Equal(t, "3", Print(val))
}

func TestApplySpreadsTrailingList(t *testing.T) {
	val, _ := evalString(t, `(apply + 1 2 (list 3 4))`)
	assert.Equal(t, "10", Print(val))
}

func TestApplyWithNoFixedArgs(t *testing.T) {
	val, _ := evalString(t, `(apply + (list 1 2 3))`)
	assert.Equal(t, "6", Print(val))
}
