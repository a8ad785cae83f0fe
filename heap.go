package corevm

import (
	"code.hybscloud.com/iobuf"
)

// smallBlockClass is the largest block size (in bytes) the heap recycles
// through a size-class free list (§4.1: "if size ≤ 128 it first pops
// from the free list for that class"). Above that, allocation goes
// straight to the Go allocator the way the spec's "otherwise
// zero-allocates" path does.
const smallBlockClass = 128

// Heap owns every live, non-interned object's header through the pool
// slice (its "pool array"), and recycles the raw byte scratch blocks
// used by Port read-ahead buffers through two
// fixed-size iobuf tiers. Long-lived object payloads (Buffer/String
// bytes) are plain Go allocations: iobuf's BoundedPool leases array
// *values*, which is the right shape for a borrow-use-return scratch
// buffer but the wrong shape for a Buffer that must grow and mutate in
// place for its whole lifetime, so those keep using append/make the way
// the teacher's own Buffer-like types do.
type Heap struct {
	vm    *VM
	pool  []*Object
	bytes int

	// capacity is the pool-array growth threshold: new_obj triggers a
	// GC cycle whenever len(pool) would exceed it (§4.7: "GC runs only
	// at safe points: whenever new_obj would grow the pool").
	capacity int

	pico iobuf.PicoBufferPool // 32B scratch blocks
	nano iobuf.NanoBufferPool // 128B scratch blocks
}

func newHeap(initialCapacity int) *Heap {
	if initialCapacity < 16 {
		initialCapacity = 16
	}
	h := &Heap{
		capacity: initialCapacity,
		pico:     iobuf.NewPicoBufferPool(initialCapacity),
		nano:     iobuf.NewNanoBufferPool(initialCapacity),
	}
	h.pico.Fill(iobuf.NewPicoBuffer)
	h.nano.Fill(iobuf.NewNanoBuffer)
	h.pico.SetNonblock(true)
	h.nano.SetNonblock(true)
	return h
}

// scratchLease is a size-class block leased from the heap's free list;
// a Port holds its read-ahead lease from creation until it is closed.
type scratchLease struct {
	tier int // 0 = pico, 1 = nano, -1 = not pooled (fell back to make)
	idx  int
	buf  []byte
}

// leaseScratch pops a block from the smallest size class that fits n
// bytes, or falls back to a plain Go allocation above smallBlockClass
// or when every pool slot is checked out.
func (h *Heap) leaseScratch(n int) *scratchLease {
	if n <= iobuf.BufferSizePico {
		if idx, err := h.pico.Get(); err == nil {
			b := h.pico.Value(idx)
			return &scratchLease{tier: 0, idx: idx, buf: b[:]}
		}
	}
	if n <= iobuf.BufferSizeNano {
		if idx, err := h.nano.Get(); err == nil {
			b := h.nano.Value(idx)
			return &scratchLease{tier: 1, idx: idx, buf: b[:]}
		}
	}
	return &scratchLease{tier: -1, buf: make([]byte, n)}
}

// release returns a pooled lease's block to its free list; a size that
// never came from a pool is simply dropped for the Go GC to reclaim.
func (h *Heap) release(l *scratchLease) {
	switch l.tier {
	case 0:
		h.pico.Put(l.idx)
	case 1:
		h.nano.Put(l.idx)
	}
}

// allocBytes copies data into a freshly owned byte slice, the storage
// primitive behind NewString/NewBuffer. It always returns a slice the
// caller owns outright (safe to mutate for Buffer, never mutated again
// for String).
func (h *Heap) allocBytes(data []byte) []byte {
	h.bytes += len(data)
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// newObj allocates and registers a fresh header of the given kind in the
// pool array, growing the pool -- and triggering a GC pass first -- once
// occupancy would exceed capacity.
func (h *Heap) newObj(kind Kind) *Object {
	if len(h.pool) >= h.capacity {
		h.vm.collectGarbage()
		// Growing right after a GC means the live set is large
		// relative to capacity; §4.7: "the pool grows when post-GC
		// occupancy exceeds half its capacity."
		if len(h.pool) > h.capacity/2 {
			h.capacity *= 2
		}
	}
	o := &Object{kind: kind, owner: h.vm}
	h.pool = append(h.pool, o)
	return o
}

func (h *Heap) vmRef(vm *VM) { h.vm = vm }
