package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/stoptime"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stoptime",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stoptime version %s\n", strings.TrimSpace(stoptime.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
