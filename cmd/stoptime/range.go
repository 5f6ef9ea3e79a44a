package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/aretw0/stoptime/internal/cli"
	"github.com/spf13/cobra"
)

var rangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "Find the number with the longest stop time in [start, end]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		start, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid start %q", args[0])
		}
		end, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid end %q", args[1])
		}

		opts := cli.RangeOptions{Config: cfg, Start: start, End: end, Out: os.Stdout}
		opts.CacheSize, _ = cmd.Flags().GetInt("cache-size")
		opts.ShowSequence, _ = cmd.Flags().GetBool("show-sequence")
		opts.Output, _ = cmd.Flags().GetString("output")
		opts.Memo, _ = cmd.Flags().GetString("memo")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunRange(sigCtx, opts)
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().Int("cache-size", 0, "Entries in the stop time memo (default 1048576)")
	rangeCmd.Flags().BoolP("show-sequence", "s", false, "Print the trajectory of the winner")
	rangeCmd.Flags().StringP("output", "o", "", "Write a report to this file")
	rangeCmd.Flags().String("memo", "", "Load the stop time memo from this file and save it back (.db for SQLite, JSON otherwise)")
}
