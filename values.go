package corevm

import (
	"hash/fnv"
	"unicode/utf8"
)

// ---- Number ----

type numberData struct{ value float64 }

func (vm *VM) NewNumber(v float64) *Object {
	o := vm.heap.newObj(KindNumber)
	o.set(flagImmutable)
	o.payload = numberData{value: v}
	return o
}

func NumberValue(o *Object) float64 { return o.payload.(numberData).value }

func IsInt(o *Object) bool {
	v := NumberValue(o)
	return v == float64(int64(v))
}

// ---- String ----

type stringData struct {
	bytes []byte
	hash  uint64
}

func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	h.Write(b)
	return h.Sum64()
}

// NewString copies s into a freshly heap-allocated immutable String
// object. It does not validate UTF-8: the bytes are stored as given
// (the reader validates its own input before strings reach here).
func (vm *VM) NewString(s string) *Object {
	b := vm.heap.allocBytes([]byte(s))
	o := vm.heap.newObj(KindString)
	o.set(flagImmutable)
	o.payload = &stringData{bytes: b, hash: hashBytes(b)}
	return o
}

func StringBytes(o *Object) []byte { return o.payload.(*stringData).bytes }
func StringValue(o *Object) string { return string(o.payload.(*stringData).bytes) }

// RuneBoundary advances idx forward to the next UTF-8 rune boundary at
// or after idx, never stepping past len(b). Used by `substring` (§8.7)
// to guarantee a caller-supplied interior index never slices through
// the middle of a multi-byte sequence.
func RuneBoundary(b []byte, idx int) int {
	if idx <= 0 {
		return 0
	}
	if idx >= len(b) {
		return len(b)
	}
	for idx < len(b) && !utf8.RuneStart(b[idx]) {
		idx++
	}
	return idx
}

// ---- Pair ----

type pairData struct {
	car, cdr *Object
	mapping  *Object // *Object of KindSourceMapping, or nil
}

func (vm *VM) Cons(car, cdr *Object) *Object {
	o := vm.heap.newObj(KindPair)
	o.payload = &pairData{car: car, cdr: cdr}
	return o
}

func Car(o *Object) *Object { return o.payload.(*pairData).car }
func Cdr(o *Object) *Object { return o.payload.(*pairData).cdr }

func SetCar(vm *VM, o, v *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	o.payload.(*pairData).car = v
	return nil
}

func SetCdr(vm *VM, o, v *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	o.payload.(*pairData).cdr = v
	return nil
}

func Mapping(o *Object) *Object { return o.payload.(*pairData).mapping }

func SetMapping(o, mapping *Object) { o.payload.(*pairData).mapping = mapping }

// ListToSlice walks a proper list (a chain of pairs ending in Nil) and
// returns its elements. It returns false if the list is improper.
func ListToSlice(o *Object) ([]*Object, bool) {
	var out []*Object
	for o != theNil {
		if o.kind != KindPair {
			return out, false
		}
		out = append(out, Car(o))
		o = Cdr(o)
	}
	return out, true
}

// SliceToList builds a proper list out of items, newest cons built last
// (so the returned head is items[0]).
func (vm *VM) SliceToList(items []*Object) *Object {
	result := theNil
	for i := len(items) - 1; i >= 0; i-- {
		result = vm.Cons(items[i], result)
	}
	if result != theNil {
		result.set(flagIsList)
	}
	return result
}

// ---- Array ----

type arrayData struct {
	items []*Object
}

func (vm *VM) NewArray(items []*Object) *Object {
	o := vm.heap.newObj(KindArray)
	cp := make([]*Object, len(items))
	copy(cp, items)
	o.payload = &arrayData{items: cp}
	return o
}

func ArrayItems(o *Object) []*Object { return o.payload.(*arrayData).items }

func ArrayPush(vm *VM, o, v *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	d := o.payload.(*arrayData)
	d.items = append(d.items, v)
	return nil
}

func ArrayPop(vm *VM, o *Object) (*Object, error) {
	if !o.ownedBy(vm) {
		return nil, vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	d := o.payload.(*arrayData)
	if len(d.items) == 0 {
		return nil, vm.newError(RangeError, "pop from empty array", Range{})
	}
	v := d.items[len(d.items)-1]
	d.items = d.items[:len(d.items)-1]
	return v, nil
}

func ArraySet(vm *VM, o *Object, idx int, v *Object) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	d := o.payload.(*arrayData)
	if idx < 0 || idx >= len(d.items) {
		return vm.newError(RangeError, "array index out of bounds", Range{})
	}
	d.items[idx] = v
	return nil
}

// ---- Buffer ----

type bufferData struct {
	bytes []byte
}

func (vm *VM) NewBuffer(b []byte) *Object {
	o := vm.heap.newObj(KindBuffer)
	o.payload = &bufferData{bytes: vm.heap.allocBytes(b)}
	return o
}

func BufferBytes(o *Object) []byte { return o.payload.(*bufferData).bytes }

func BufferAppend(vm *VM, o *Object, b []byte) error {
	if !o.ownedBy(vm) {
		return vm.newError(ImmutableError, "cannot modify foreign object", Range{})
	}
	if o.IsConst() {
		return vm.newError(ImmutableError, "buffer is constant", Range{})
	}
	d := o.payload.(*bufferData)
	d.bytes = append(d.bytes, b...)
	return nil
}

// ---- Procedure / Macro / Native-Procedure ----

type procData struct {
	env     *Object // KindEnvironment
	label   string
	formals *Object // list of formal-parameter symbols, with modifiers
	body    *Object // list of body forms
}

func (vm *VM) NewProcedure(env, formals, body *Object, label string) *Object {
	o := vm.heap.newObj(KindProcedure)
	o.set(flagImmutable)
	o.payload = &procData{env: env, formals: formals, body: body, label: label}
	return o
}

func (vm *VM) NewMacro(env, formals, body *Object, label string) *Object {
	o := vm.heap.newObj(KindMacro)
	o.set(flagImmutable)
	o.payload = &procData{env: env, formals: formals, body: body, label: label}
	return o
}

func ProcEnv(o *Object) *Object     { return o.payload.(*procData).env }
func ProcFormals(o *Object) *Object { return o.payload.(*procData).formals }
func ProcBody(o *Object) *Object    { return o.payload.(*procData).body }
func ProcLabel(o *Object) string    { return o.payload.(*procData).label }

type NativeFunc func(vm *VM, args []*Object) (*Object, error)

type nativeProcData struct {
	name string
	fn   NativeFunc
}

func (vm *VM) NewNativeProcedure(name string, fn NativeFunc) *Object {
	o := vm.heap.newObj(KindNativeProcedure)
	o.set(flagImmutable)
	o.payload = &nativeProcData{name: name, fn: fn}
	return o
}

func NativeName(o *Object) string   { return o.payload.(*nativeProcData).name }
func NativeFn(o *Object) NativeFunc { return o.payload.(*nativeProcData).fn }

// ---- Extension-Object ----

type extensionData struct {
	class    string
	ptr      any
	finalize func(any)
	id       string // uuid, distinguishes instances across VMs in diagnostics
}

func (vm *VM) NewExtensionObject(class string, ptr any, finalize func(any)) *Object {
	o := vm.heap.newObj(KindExtension)
	o.payload = &extensionData{class: class, ptr: ptr, finalize: finalize, id: newObjectID()}
	return o
}

func ExtensionClass(o *Object) string { return o.payload.(*extensionData).class }
func ExtensionPtr(o *Object) any      { return o.payload.(*extensionData).ptr }
func ExtensionID(o *Object) string    { return o.payload.(*extensionData).id }

// ---- Source-File / Source-Mapping ----

type sourceFileData struct {
	path     string
	content  []byte // raw source text, kept for callstack excerpts (§4.8)
	mappings []*Object
}

func (vm *VM) NewSourceFile(path string) *Object {
	o := vm.heap.newObj(KindSourceFile)
	o.payload = &sourceFileData{path: path}
	return o
}

func SourceFilePath(o *Object) string        { return o.payload.(*sourceFileData).path }
func SourceFileMappings(o *Object) []*Object { return o.payload.(*sourceFileData).mappings }
func SourceFileContent(o *Object) []byte     { return o.payload.(*sourceFileData).content }

// SetSourceFileContent records the raw bytes behind a Source-File, used
// only to extract a short excerpt when printing a callstack; it plays no
// part in reading or evaluation.
func (vm *VM) SetSourceFileContent(o *Object, content []byte) {
	o.payload.(*sourceFileData).content = content
}

func (o *Object) appendMapping(m *Object) {
	d := o.payload.(*sourceFileData)
	d.mappings = append(d.mappings, m)
}

type sourceMappingData struct {
	file     *Object // KindSourceFile
	rg       Range
	line     int
	hitCount int
}

func (vm *VM) NewSourceMapping(file *Object, rg Range, line int) *Object {
	o := vm.heap.newObj(KindSourceMapping)
	o.payload = &sourceMappingData{file: file, rg: rg, line: line}
	if file != nil {
		file.appendMapping(o)
	}
	return o
}

func MappingFile(o *Object) *Object { return o.payload.(*sourceMappingData).file }
func MappingRange(o *Object) Range  { return o.payload.(*sourceMappingData).rg }
func MappingLine(o *Object) int     { return o.payload.(*sourceMappingData).line }
func MappingHits(o *Object) int     { return o.payload.(*sourceMappingData).hitCount }
func MappingHit(o *Object)          { o.payload.(*sourceMappingData).hitCount++ }
