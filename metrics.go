package corevm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// vmMetrics is the Prometheus instrumentation for one VM's heap and GC
// (§4.7's "pool occupancy, bytes allocated, GC cycle count and
// duration" complement), grounded in oriys-nova's PrometheusMetrics:
// a private registry per component rather than the global default one,
// so embedding multiple VMs in one process never collides on metric
// names.
type vmMetrics struct {
	registry *prometheus.Registry

	poolObjects prometheus.Gauge
	poolBytes   prometheus.Gauge
	poolCap     prometheus.Gauge
	gcCycles    prometheus.Counter
	gcDuration  prometheus.Histogram
	gcFreed     prometheus.Counter
}

func newVMMetrics(vmID string) *vmMetrics {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"vm": vmID}

	m := &vmMetrics{
		registry: registry,
		poolObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "corevm",
			Name:        "heap_pool_objects",
			Help:        "Live objects currently tracked by the heap's pool array.",
			ConstLabels: labels,
		}),
		poolBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "corevm",
			Name:        "heap_bytes_allocated",
			Help:        "Total bytes handed out by Heap.allocBytes across the VM's lifetime.",
			ConstLabels: labels,
		}),
		poolCap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "corevm",
			Name:        "heap_pool_capacity",
			Help:        "Current pool-array growth threshold (§4.7).",
			ConstLabels: labels,
		}),
		gcCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corevm",
			Name:        "gc_cycles_total",
			Help:        "Mark-and-sweep cycles run.",
			ConstLabels: labels,
		}),
		gcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "corevm",
			Name:        "gc_cycle_duration_seconds",
			Help:        "Wall time spent in one mark-and-sweep cycle.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		gcFreed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "corevm",
			Name:        "gc_objects_freed_total",
			Help:        "Objects reclaimed by sweep across every cycle.",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		m.poolObjects, m.poolBytes, m.poolCap,
		m.gcCycles, m.gcDuration, m.gcFreed,
	)
	return m
}

// Metrics returns the VM's private Prometheus registry, ready to be
// served over /metrics (e.g. via promhttp.HandlerFor) by a host
// embedding corevm.
func (vm *VM) Metrics() *prometheus.Registry { return vm.metrics.registry }

func (vm *VM) observeHeap() {
	vm.metrics.poolObjects.Set(float64(len(vm.heap.pool)))
	vm.metrics.poolBytes.Set(float64(vm.heap.bytes))
	vm.metrics.poolCap.Set(float64(vm.heap.capacity))
}
