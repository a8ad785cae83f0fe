package corevm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictLinearLookupBelowThreshold(t *testing.T) {
	vm := NewVM(nil)
	d := vm.NewDictionary()

	a, b := vm.Intern("a"), vm.Intern("b")
	require.NoError(t, DictSet(vm, d, a, vm.NewNumber(1)))
	require.NoError(t, DictSet(vm, d, b, vm.NewNumber(2)))

	assert.Empty(t, dictOf(d).index)

	v, ok := DictLookup(d, a)
	require.True(t, ok)
	assert.Equal(t, float64(1), NumberValue(v))
}

func TestDictBuildsIndexPastThreshold(t *testing.T) {
	vm := NewVM(nil)
	d := vm.NewDictionary()

	for i := 0; i <= hashIndexThreshold; i++ {
		key := vm.Intern(fmt.Sprintf("k%d", i))
		require.NoError(t, DictSet(vm, d, key, vm.NewNumber(float64(i))))
	}

	assert.NotEmpty(t, dictOf(d).index)

	for i := 0; i <= hashIndexThreshold; i++ {
		key := vm.Intern(fmt.Sprintf("k%d", i))
		v, ok := DictLookup(d, key)
		require.True(t, ok)
		assert.Equal(t, float64(i), NumberValue(v))
	}
}

func TestDictDeleteMarksInPlace(t *testing.T) {
	vm := NewVM(nil)
	d := vm.NewDictionary()
	a := vm.Intern("a")
	require.NoError(t, DictSet(vm, d, a, vm.NewNumber(1)))
	require.NoError(t, DictDelete(vm, d, a))

	_, ok := DictLookup(d, a)
	assert.False(t, ok)
	assert.Equal(t, 0, DictCount(d))

	_, stillThere := DictLookup(d, a)
	assert.False(t, stillThere)
}

func TestDictSetOverwritesExisting(t *testing.T) {
	vm := NewVM(nil)
	d := vm.NewDictionary()
	a := vm.Intern("a")
	require.NoError(t, DictSet(vm, d, a, vm.NewNumber(1)))
	require.NoError(t, DictSet(vm, d, a, vm.NewNumber(2)))

	v, ok := DictLookup(d, a)
	require.True(t, ok)
	assert.Equal(t, float64(2), NumberValue(v))
	assert.Equal(t, 1, DictCount(d))
}

func TestDictSetRejectsForeignObject(t *testing.T) {
	owner := NewVM(nil)
	other := NewVM(nil)
	d := owner.NewDictionary()

	err := DictSet(other, d, other.Intern("a"), other.NewNumber(1))
	require.Error(t, err)
	ve, ok := err.(*VMError)
	require.True(t, ok)
	assert.Equal(t, ImmutableError, ve.Kind)
}
