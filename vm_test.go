package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, src string) (*Object, *VM) {
	t.Helper()
	vm := NewVM(nil)
	val, err := vm.RunString(src, "<test>")
	require.NoError(t, err)
	return val, vm
}

func TestScenario_FactorialByTailRecursion(t *testing.T) {
	val, _ := evalString(t, `
		(define (fact n acc) (if (= n 0) acc (fact (- n 1) (* acc n))))
		(fact 10000 1)
	`)
	assert.True(t, IsInt(val))
}

func TestScenario_ProperListVsDotted(t *testing.T) {
	val, _ := evalString(t, `(cons 1 (cons 2 (cons 3 '())))`)
	assert.Equal(t, "(1 2 3)", Print(val))

	val2, _ := evalString(t, `(cons 1 2)`)
	assert.Equal(t, "(1 . 2)", Print(val2))
}

func TestScenario_QuasiquoteSplice(t *testing.T) {
	val, _ := evalString(t, "`(1 ,(+ 1 1) ,@(list 3 4) 5)")
	assert.Equal(t, "(1 2 3 4 5)", Print(val))
}

func TestScenario_MacroExpandsInCallerScope(t *testing.T) {
	val, _ := evalString(t, `
		(defmacro my-when (c . body) (list (quote if) c (cons (quote begin) body) (quote undefined)))
		(let ((x 5)) (my-when (> x 0) x))
	`)
	assert.Equal(t, "5", Print(val))
}

func TestScenario_CatchThrowRoundTrip(t *testing.T) {
	vm := NewVM(nil)
	depthBefore := vm.stack.depth()
	val, err := vm.RunString(`(catch (throw 42))`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "42", Print(val))
	assert.Equal(t, depthBefore, vm.stack.depth())
}

func TestScenario_StringInterpolation(t *testing.T) {
	val, _ := evalString(t, `(let ((n "world")) "hello \(n)!")`)
	assert.Equal(t, `"hello world!"`, Print(val))
}

func TestScenario_DictionaryPath(t *testing.T) {
	val, _ := evalString(t, `(define d ##[(a . 1)(b . 2)]) d:a`)
	assert.Equal(t, "1", Print(val))
}

func TestScenario_LargeListSurvivesGC(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`
		(define (build n acc) (if (= n 0) acc (build (- n 1) (cons n acc))))
		(define big (build 1000000 '()))
	`, "<test>")
	require.NoError(t, err)

	vm.collectGarbage()

	val, err := vm.RunString(`(length big)`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "1000000", Print(val))
}

func TestConstantImmutability(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`(defconst k 1) (set! k 2)`, "<test>")
	require.Error(t, err)
	ve, ok := err.(*VMError)
	require.True(t, ok)
	assert.Equal(t, ImmutableError, ve.Kind)
}

func TestUnboundSymbol(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`totally-unbound-name`, "<test>")
	require.Error(t, err)
	ve, ok := err.(*VMError)
	require.True(t, ok)
	assert.Equal(t, UnboundSymbol, ve.Kind)
}

func TestArityError(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`(define (f a b) (+ a b)) (f 1)`, "<test>")
	require.Error(t, err)
	ve, ok := err.(*VMError)
	require.True(t, ok)
	assert.Equal(t, ArityError, ve.Kind)
}

func TestCrossVMWriteSafety(t *testing.T) {
	owner := NewVM(nil)
	other := NewVM(nil)

	pair := owner.Cons(owner.NewNumber(1), owner.NewNumber(2))
	err := SetCar(other, pair, other.NewNumber(9))
	require.Error(t, err)
	ve, ok := err.(*VMError)
	require.True(t, ok)
	assert.Equal(t, ImmutableError, ve.Kind)

	// Read-only traversal across VMs succeeds.
	assert.Equal(t, float64(1), NumberValue(Car(pair)))
}

func TestSymbolInterning(t *testing.T) {
	vm := NewVM(nil)
	a := vm.Intern("frobnicate")
	b := vm.Intern("frobnicate")
	assert.True(t, a == b)
}

func TestRoundTripReadPrint(t *testing.T) {
	cases := []string{
		"42", "-7", "3.5", `"hello"`, "foo", "(1 2 3)", "(1 . 2)",
		"#(1 2 3)", "true", "false",
	}
	for _, src := range cases {
		vm := NewVM(nil)
		r := vm.NewReader(src, "")
		form, ok, err := r.ReadOne()
		require.NoError(t, err)
		require.True(t, ok)
		printed := Print(form)

		r2 := vm.NewReader(printed, "")
		form2, ok2, err2 := r2.ReadOne()
		require.NoError(t, err2)
		require.True(t, ok2)
		assert.Equal(t, printed, Print(form2), "round-trip mismatch for %q", src)
	}
}

func TestTailCallBoundedStackDepth(t *testing.T) {
	vm := NewVM(nil)
	_, err := vm.RunString(`
		(define (loop n) (if (= n 0) 'done (loop (- n 1))))
		(loop 200000)
	`, "<test>")
	require.NoError(t, err)
}
