package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set by the release build's -ldflags; left at "dev" for a
// plain `go build`.
var version = "dev"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the corevm version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("corevm", version)
			return nil
		},
	}
}
