// Command corevm runs scripts or an interactive REPL against the
// corevm Lisp VM.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "corevm",
		Short: "corevm -- an embeddable Lisp VM",
		Long:  "corevm runs S-expression scripts or an interactive read-eval-print loop against the corevm VM core.",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (GC thresholds, max eval depth, debug flags)")

	rootCmd.AddCommand(
		runCmd(),
		replCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
