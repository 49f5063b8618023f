package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "decor %s\n", version)
			fmt.Fprintf(c.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(c.stdout, "Built: %s\n", date)
		},
	}
}
