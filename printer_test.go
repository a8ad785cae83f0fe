package corevm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintIntegerHasNoDecimalPoint(t *testing.T) {
	vm := NewVM(nil)
	assert.Equal(t, "42", Print(vm.NewNumber(42)))
	assert.Equal(t, "-7", Print(vm.NewNumber(-7)))
	assert.Equal(t, "0", Print(vm.NewNumber(0)))
}

func TestPrintFloatRoundTripsExactly(t *testing.T) {
	vm := NewVM(nil)
	cases := []float64{3.5, 0.1, 1.0 / 3.0, 123456789.123456}
	for _, v := range cases {
		s := Print(vm.NewNumber(v))
		n := vm.NewReader(s, "")
		form, ok, err := n.ReadOne()
		if err != nil || !ok {
			t.Fatalf("could not reread %q", s)
		}
		assert.Equal(t, v, NumberValue(form))
	}
}

func TestPrintStringEscapesControlChars(t *testing.T) {
	vm := NewVM(nil)
	s := vm.NewString("a\nb\tc\"d\\e")
	assert.Equal(t, `"a\nb\tc\"d\\e"`, Print(s))
}

func TestPrintQuoteShorthand(t *testing.T) {
	vm := NewVM(nil)
	quoted := vm.Cons(vm.Intern("quote"), vm.Cons(vm.Intern("x"), theNil))
	assert.Equal(t, "'x", Print(quoted))
}

func TestPrintDottedPair(t *testing.T) {
	vm := NewVM(nil)
	p := vm.Cons(vm.NewNumber(1), vm.NewNumber(2))
	assert.Equal(t, "(1 . 2)", Print(p))
}

func TestPrintProperList(t *testing.T) {
	vm := NewVM(nil)
	lst := vm.SliceToList([]*Object{vm.NewNumber(1), vm.NewNumber(2), vm.NewNumber(3)})
	assert.Equal(t, "(1 2 3)", Print(lst))
}

func TestPrintArray(t *testing.T) {
	vm := NewVM(nil)
	arr := vm.NewArray([]*Object{vm.NewNumber(1), vm.NewNumber(2)})
	assert.Equal(t, "#(1 2)", Print(arr))
}

func TestPrettyStringIndentsNestedLists(t *testing.T) {
	vm := NewVM(nil)
	lst := vm.SliceToList([]*Object{vm.Intern("a"), vm.SliceToList([]*Object{vm.Intern("b")})})
	out := PrettyString(lst)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
}
