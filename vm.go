package corevm

import (
	"os"
)

// VM is one self-contained interpreter instance: its own heap, symbol
// table, root environment, and standard ports. Multiple VMs may run in
// the same process and exchange interned/immutable objects freely;
// anything else crosses a VM boundary only as a read (§5).
type VM struct {
	heap  *Heap
	stack *valueStack

	rootEnv    *Object
	currentEnv *Object

	stdin  *Object
	stdout *Object
	stderr *Object

	lastEval    *Object
	keepAlive   []*Object
	sourceFiles []*Object

	symbols map[string]*Object

	// parent, set by NewChildVM, lets a child VM fall back to the
	// parent VM's dynamically interned symbols (§9) without
	// re-interning them.
	parent *VM

	reader *Reader

	config   *Config
	gcCycles int64

	id string

	// callStack is the evaluator's diagnostic backtrace (§4.8): one
	// entry per live, non-tail evalLoop activation. Tail calls rewrite
	// the top entry in place instead of pushing, which is what keeps a
	// self-tail-recursive procedure's backtrace O(1) in depth (§8.4).
	callStack []callFrame

	metrics *vmMetrics
}

// callFrame is one entry of vm.callStack: the Pair currently being
// applied (carrying a Source-Mapping when read from a file) and the
// label of the procedure it resolved to, once known.
type callFrame struct {
	expr  *Object
	label string
}

// NewVM builds a fresh, independent interpreter: its own heap and
// symbol table, a root environment with every primitive bound, and
// *stdin*/*stdout*/*stderr* Ports wrapping the process's standard
// streams.
func NewVM(config *Config) *VM {
	if config == nil {
		config = NewConfig()
	}
	vm := &VM{
		symbols: make(map[string]*Object, 256),
		config:  config,
		id:      newObjectID(),
	}
	vm.metrics = newVMMetrics(vm.id)
	vm.heap = newHeap(config.GetInt("heap.initial_pool_size"))
	vm.heap.vmRef(vm)
	vm.stack = newValueStack(1024)

	vm.rootEnv = vm.NewEnvironment(nil)
	vm.currentEnv = vm.rootEnv

	vm.stdin = vm.NewPort(vm.NewFileStream(os.Stdin), portInput, isTTY(os.Stdin))
	vm.stdout = vm.NewPort(vm.NewFileStream(os.Stdout), portOutput, isTTY(os.Stdout))
	vm.stderr = vm.NewPort(vm.NewFileStream(os.Stderr), portOutput, isTTY(os.Stderr))
	vm.keepAlive = append(vm.keepAlive, vm.stdin, vm.stdout, vm.stderr)

	registerPrimitives(vm)
	return vm
}

// NewChildVM spawns a VM that shares nothing mutable with parent but
// falls back to its dynamically interned symbol table (§9), the way a
// sandboxed macro-expansion environment or a nested `with-input` block
// needs fresh state without re-learning every symbol the enclosing
// program already defined.
func NewChildVM(parent *VM, config *Config) *VM {
	child := NewVM(config)
	child.parent = parent
	return child
}

// ID returns the VM's process-wide unique identifier, used to
// disambiguate diagnostics when multiple VMs share an error port (§5).
func (vm *VM) ID() string { return vm.id }

func (vm *VM) Config() *Config { return vm.config }

func (vm *VM) RootEnv() *Object    { return vm.rootEnv }
func (vm *VM) CurrentEnv() *Object { return vm.currentEnv }

func (vm *VM) Stdin() *Object  { return vm.stdin }
func (vm *VM) Stdout() *Object { return vm.stdout }
func (vm *VM) Stderr() *Object { return vm.stderr }

// Close flushes and closes the VM's standard ports. Other heap objects
// are left for the GC (or process exit) to reclaim.
func (vm *VM) Close() error {
	for _, p := range []*Object{vm.stdout, vm.stderr} {
		if err := vm.FlushPort(p); err != nil {
			return err
		}
	}
	for _, p := range []*Object{vm.stdin, vm.stdout, vm.stderr} {
		if err := portOf(p).close(); err != nil {
			return err
		}
	}
	return nil
}
