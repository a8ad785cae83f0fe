package corevm

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// RunREPL drives an interactive read-eval-print loop on vm's standard
// ports the way minimega's miniclient drives its command shell: line
// editing and history via liner, every form on a non-blank line read
// and evaluated in turn, with errors reported to the error port rather than
// aborting the session (§7: "in interactive mode the REPL resumes at
// the next prompt").
func (vm *VM) RunREPL(prompt string) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		text, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)
		vm.evalREPLLine(text, "<repl>")
	}
}

func (vm *VM) evalREPLLine(text, path string) {
	r := vm.NewReader(text, path)
	prevReader := vm.reader
	vm.reader = r
	defer func() { vm.reader = prevReader }()

	forms, err := r.ReadAll()
	if err != nil {
		vm.reportUncaught(err)
		vm.callStack = vm.callStack[:0]
		return
	}
	for _, form := range forms {
		val, err := vm.Eval(form, vm.currentEnv)
		if err != nil {
			if vm.config.GetBool("debug.on_error") && PortIsATTY(vm.stdin) {
				vm.runDebugREPL(vm.currentEnv)
			}
			vm.reportUncaught(err)
			vm.callStack = vm.callStack[:0]
			return
		}
		vm.lastEval = val
		_ = vm.WriteBytes(vm.stdout, []byte(Print(val)+"\n"))
		_ = vm.FlushPort(vm.stdout)
	}
}

// runDebugREPL is the nested sub-REPL §4.8 describes: spawned the first
// time an error escapes to the top level while debug.on_error is set
// and the current input is a terminal. Typing /quit resumes the normal
// error path; any other line is read and evaluated in env, the
// environment active at the point of failure, so the user can inspect
// live bindings before the error is reported and unwound past.
func (vm *VM) runDebugREPL(env *Object) {
	fmt.Fprintln(errWriter{vm}, "entering debug REPL; type /quit to resume")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	savedEnv := vm.currentEnv
	vm.currentEnv = env
	defer func() { vm.currentEnv = savedEnv }()

	for {
		text, err := line.Prompt("debug> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			return
		}
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text == "/quit" {
			return
		}
		line.AppendHistory(text)

		r := vm.NewReader(text, "<debug>")
		form, ok, rerr := r.ReadOne()
		if rerr != nil {
			vm.reportUncaught(rerr)
			continue
		}
		if !ok {
			continue
		}
		val, everr := vm.Eval(form, env)
		if everr != nil {
			vm.reportUncaught(everr)
			continue
		}
		_ = vm.WriteBytes(vm.stdout, []byte(Print(val)+"\n"))
		_ = vm.FlushPort(vm.stdout)
	}
}

// errWriter adapts vm's error Port to io.Writer for the one-off banner
// line above, rather than teaching every diagnostic caller the Port API.
type errWriter struct{ vm *VM }

func (w errWriter) Write(p []byte) (int, error) {
	if err := w.vm.WriteBytes(w.vm.stderr, p); err != nil {
		return 0, err
	}
	return len(p), w.vm.FlushPort(w.vm.stderr)
}
