package main

import (
	"github.com/corelisp/corevm"
	"github.com/spf13/cobra"
)

func replCmd() *cobra.Command {
	var debugOnError bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if debugOnError {
				cfg.SetBool("debug.on_error", true)
			}

			vm := corevm.NewVM(cfg)
			defer vm.Close()

			vm.RunREPL("corevm> ")
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugOnError, "debug-on-error", false, "drop into a nested REPL on the first uncaught error")
	return cmd
}
