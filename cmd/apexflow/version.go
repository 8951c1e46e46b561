package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jax-labs/apexflow/version"
)

func newVersionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if full {
				fmt.Println(version.GetFullVersion())
				return
			}
			fmt.Println(version.GetShortVersion())
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "include commit, branch and build time")
	return cmd
}
