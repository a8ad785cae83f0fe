package corevm

// dictSlot is one key/value entry. Removal marks deleted rather than
// compacting the slice, so iteration order and existing hash-index
// offsets survive a delete (§4.5: "Removal marks the value as undefined
// in place").
type dictSlot struct {
	key     *Object // KindSymbol
	value   *Object
	deleted bool
}

// hashIndexThreshold is the entry count at which the Dictionary lazily
// builds an open-addressing hash index on top of its linear slot list
// (§4.5). Below it, lookup is a linear scan comparing symbol pointer
// identity, which is cheap and avoids the index's extra allocation for
// the common case of small scopes (most environments never grow past a
// handful of bindings).
const hashIndexThreshold = 8

type dictData struct {
	slots []dictSlot
	index []int32 // lazily built open-addressing table; empty until needed
}

func (vm *VM) NewDictionary() *Object {
	o := vm.heap.newObj(KindDictionary)
	o.payload = &dictData{}
	return o
}

func dictOf(o *Object) *dictData { return o.payload.(*dictData) }

// DictLookup returns the value bound to key, or (nil, false) if absent
// or deleted.
func DictLookup(o *Object, key *Object) (*Object, bool) {
	d := dictOf(o)
	if len(d.index) > 0 {
		return d.lookupIndexed(key)
	}
	for i := len(d.slots) - 1; i >= 0; i-- {
		if d.slots[i].key == key && !d.slots[i].deleted {
			return d.slots[i].value, true
		}
	}
	return nil, false
}

func (d *dictData) lookupIndexed(key *Object) (*Object, bool) {
	mask := uint64(len(d.index) - 1)
	h := symbolHash(key)
	for i := uint64(0); i < uint64(len(d.index)); i++ {
		slot := d.index[(h+i)&mask]
		if slot == -1 {
			return nil, false
		}
		entry := &d.slots[slot]
		if entry.key == key {
			if entry.deleted {
				return nil, false
			}
			return entry.value, true
		}
	}
	return nil, false
}

// DictSet inserts or overwrites the binding for key. It grows the hash
// index once the slot count (deleted slots included) crosses
// hashIndexThreshold.
func DictSet(vm *VM, o, key, value *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	d := dictOf(o)
	if len(d.index) > 0 {
		if slot, ok := d.findSlotIndex(key); ok {
			d.slots[slot].value = value
			d.slots[slot].deleted = false
			return nil
		}
	} else {
		for i := range d.slots {
			if d.slots[i].key == key {
				d.slots[i].value = value
				d.slots[i].deleted = false
				return nil
			}
		}
	}
	d.slots = append(d.slots, dictSlot{key: key, value: value})
	switch {
	case len(d.index) > 0 && len(d.slots) > len(d.index)/2:
		// Load factor crossed 50%: rebuild at double the slot count
		// rather than let indexInsert degrade into a full linear probe
		// (or silently drop the entry once every slot is occupied).
		d.buildIndex()
	case len(d.index) > 0:
		d.indexInsert(key, len(d.slots)-1)
	case len(d.slots) > hashIndexThreshold:
		d.buildIndex()
	}
	return nil
}

func (d *dictData) findSlotIndex(key *Object) (int, bool) {
	mask := uint64(len(d.index) - 1)
	h := symbolHash(key)
	for i := uint64(0); i < uint64(len(d.index)); i++ {
		slot := d.index[(h+i)&mask]
		if slot == -1 {
			return 0, false
		}
		if d.slots[slot].key == key {
			return int(slot), true
		}
	}
	return 0, false
}

func (d *dictData) buildIndex() {
	size := nextPow2(len(d.slots) * 2)
	d.index = make([]int32, size)
	for i := range d.index {
		d.index[i] = -1
	}
	for i, s := range d.slots {
		if !s.deleted {
			d.indexInsert(s.key, i)
		}
	}
}

func (d *dictData) indexInsert(key *Object, slot int) {
	mask := uint64(len(d.index) - 1)
	h := symbolHash(key)
	for i := uint64(0); i < uint64(len(d.index)); i++ {
		pos := (h + i) & mask
		if d.index[pos] == -1 {
			d.index[pos] = int32(slot)
			return
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	if p < 2 {
		p = 2
	}
	return p
}

// DictDelete marks key's entry undefined in place.
func DictDelete(vm *VM, o, key *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	d := dictOf(o)
	for i := range d.slots {
		if d.slots[i].key == key && !d.slots[i].deleted {
			d.slots[i].deleted = true
			return nil
		}
	}
	return nil
}

// DictEntries returns the live (key, value) pairs in insertion order.
func DictEntries(o *Object) []dictSlot {
	d := dictOf(o)
	out := make([]dictSlot, 0, len(d.slots))
	for _, s := range d.slots {
		if !s.deleted {
			out = append(out, s)
		}
	}
	return out
}

func DictCount(o *Object) int {
	n := 0
	for _, s := range dictOf(o).slots {
		if !s.deleted {
			n++
		}
	}
	return n
}
