package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridable at build time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dela version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dela v%s\n", Version)
			return nil
		},
	}
}
