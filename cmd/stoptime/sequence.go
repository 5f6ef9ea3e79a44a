package main

import (
	"os"

	"github.com/aretw0/stoptime/internal/cli"
	"github.com/spf13/cobra"
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence <N>",
	Short: "Print the Collatz trajectory of N",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.PrintSequence(args[0], os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(sequenceCmd)
}
