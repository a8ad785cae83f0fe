package main

import (
	"fmt"
	"os"

	"github.com/corelisp/corevm"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var coverage bool
	var debugOnError bool

	cmd := &cobra.Command{
		Use:   "run <script.lsp>",
		Short: "Evaluate every top-level form in a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if coverage {
				cfg.SetBool("debug.coverage", true)
			}
			if debugOnError {
				cfg.SetBool("debug.on_error", true)
			}

			vm := corevm.NewVM(cfg)
			defer vm.Close()

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			_, err = vm.RunString(string(src), args[0])
			if coverage {
				printCoverage(vm)
			}
			if err != nil {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&coverage, "coverage", false, "track and print per-file source coverage hit counts")
	cmd.Flags().BoolVar(&debugOnError, "debug-on-error", false, "drop into a nested REPL on the first uncaught error")
	return cmd
}

func printCoverage(vm *corevm.VM) {
	for path, ranges := range vm.CoverageReport() {
		fmt.Printf("%s:\n", path)
		for _, r := range ranges {
			fmt.Printf("  line %d %s: %d hit(s)\n", r.Line, r.Range, r.Hits)
		}
	}
}
