package corevm

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistryExposesExpectedNames(t *testing.T) {
	vm := NewVM(nil)
	families, err := vm.Metrics().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"corevm_heap_pool_objects",
		"corevm_heap_bytes_allocated",
		"corevm_heap_pool_capacity",
		"corevm_gc_cycles_total",
		"corevm_gc_cycle_duration_seconds",
		"corevm_gc_objects_freed_total",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestMetricsGCCycleIncrementsCounter(t *testing.T) {
	vm := NewVM(nil)
	before := testutil.ToFloat64(vm.metrics.gcCycles)
	vm.collectGarbage()
	after := testutil.ToFloat64(vm.metrics.gcCycles)
	assert.Equal(t, before+1, after)
}

func TestMetricsTwoVMsDoNotCollide(t *testing.T) {
	a := NewVM(nil)
	b := NewVM(nil)
	assert.NotEqual(t, a.ID(), b.ID())

	famsA, err := a.Metrics().Gather()
	require.NoError(t, err)
	famsB, err := b.Metrics().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, famsA)
	assert.NotEmpty(t, famsB)
}
