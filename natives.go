package corevm

import "sort"

// RegisterNative binds a host-implemented callable into vm's root
// environment, mirroring the Host C ABI contract from §6: "every
// extension-registered native procedure receives the VM plus an
// argument list already evaluated." This is the seam a domain
// extension (crypto, filesystem, sqlite, compression, HTTP/WebSocket
// framing, regex -- all out of scope per §1) would register against;
// corevm itself only exercises it with a toy extension in tests.
func (vm *VM) RegisterNative(name string, fn NativeFunc) error {
	sym := vm.Intern(name)
	proc := vm.NewNativeProcedure(name, fn)
	return EnvDefine(vm, vm.rootEnv, sym, proc)
}

// CoverageRange is one source span's hit count, as recorded on its
// Source-Mapping when debug.coverage is enabled (§3's Source-Mapping
// already carries hit-count; this just reports it back per file).
type CoverageRange struct {
	Range Range
	Line  int
	Hits  int
}

// CoverageReport returns, for every loaded Source-File, the per-mapping
// hit counts accumulated so far. Ranges with zero hits are included so
// callers can distinguish "never reached" from "not instrumented."
func (vm *VM) CoverageReport() map[string][]CoverageRange {
	out := make(map[string][]CoverageRange, len(vm.sourceFiles))
	for _, sf := range vm.sourceFiles {
		path := SourceFilePath(sf)
		mappings := SourceFileMappings(sf)
		ranges := make([]CoverageRange, 0, len(mappings))
		for _, m := range mappings {
			ranges = append(ranges, CoverageRange{
				Range: MappingRange(m),
				Line:  MappingLine(m),
				Hits:  MappingHits(m),
			})
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].Range.Start < ranges[j].Range.Start })
		out[path] = ranges
	}
	return out
}
