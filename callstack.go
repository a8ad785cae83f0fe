package corevm

import (
	"fmt"
	"strings"
)

// excerptBytes is the window around an expression's start byte that the
// callstack printer shows (§4.8: "first 40 bytes around the
// expression's start, cutting at newline boundaries").
const excerptBytes = 40

// renderCallstack formats vm.callStack (most recent activation first)
// the way §4.8 describes: a line per frame naming the callable, plus a
// short source excerpt for any frame whose expression carries a
// Source-Mapping.
func renderCallstack(vm *VM) string {
	var b strings.Builder
	for i := len(vm.callStack) - 1; i >= 0; i-- {
		f := vm.callStack[i]
		label := f.label
		if label == "" {
			label = "?"
		}
		fmt.Fprintf(&b, "  at %s", label)
		if f.expr != nil {
			if m := Mapping(f.expr); m != nil {
				if ex := sourceExcerpt(m); ex != "" {
					fmt.Fprintf(&b, " (%s:%d: %s)", SourceFilePath(MappingFile(m)), MappingLine(m), ex)
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// sourceExcerpt pulls up to excerptBytes bytes starting at m's range,
// cutting at the first newline so a multi-line form doesn't flood the
// error port.
func sourceExcerpt(m *Object) string {
	file := MappingFile(m)
	if file == nil {
		return ""
	}
	content := SourceFileContent(file)
	rg := MappingRange(m)
	if rg.Start < 0 || rg.Start >= len(content) {
		return ""
	}
	end := rg.Start + excerptBytes
	if end > len(content) {
		end = len(content)
	}
	slice := content[rg.Start:end]
	if idx := indexByte(slice, '\n'); idx >= 0 {
		slice = slice[:idx]
	}
	return string(slice)
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// reportUncaught formats an uncaught VMError to vm's error port the way
// §7 specifies: the taxonomy kind, the message, and the callstack
// reconstructed from vm.callStack. Called from the top-level run loop
// (RunString) and from the REPL, never from inside catch (catch
// intercepts before the error reaches here).
func (vm *VM) reportUncaught(err error) {
	ve, ok := err.(*VMError)
	if !ok {
		_ = vm.WriteBytes(vm.stderr, []byte(err.Error()+"\n"))
		_ = vm.FlushPort(vm.stderr)
		return
	}
	msg := fmt.Sprintf("%s: %s\n", ve.Kind, ve.Message)
	if ve.Kind == UserThrow {
		msg = fmt.Sprintf("uncaught throw: %s\n", Print(ve.Payload))
	}
	_ = vm.WriteBytes(vm.stderr, []byte(msg))
	if cs := renderCallstack(vm); cs != "" {
		_ = vm.WriteBytes(vm.stderr, []byte(cs))
	}
	_ = vm.FlushPort(vm.stderr)
}

// RunString reads and evaluates every top-level form in src in order,
// under the name path (used for Source-Mapping and error messages). An
// uncaught error is reported to the error port and halts the remaining
// forms -- matching §7's "terminate the current eval cycle" -- and is
// also returned to the caller.
func (vm *VM) RunString(src, path string) (*Object, error) {
	r := vm.NewReader(src, path)
	vm.reader = r
	defer func() { vm.reader = nil }()

	var last *Object = theUndef
	for {
		form, ok, err := r.ReadOne()
		if err != nil {
			vm.reportUncaught(err)
			vm.callStack = vm.callStack[:0]
			return nil, err
		}
		if !ok {
			return last, nil
		}
		val, err := vm.Eval(form, vm.currentEnv)
		if err != nil {
			if vm.config.GetBool("debug.on_error") && PortIsATTY(vm.stdin) {
				vm.runDebugREPL(vm.currentEnv)
			}
			vm.reportUncaught(err)
			vm.callStack = vm.callStack[:0]
			return nil, err
		}
		vm.lastEval = val
		last = val
	}
}
