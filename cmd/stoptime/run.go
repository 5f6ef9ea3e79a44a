package main

import (
	"os"

	"github.com/aretw0/stoptime"
	"github.com/aretw0/stoptime/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [N]",
	Short: "Compute the stop time of N or of a random value",
	Long: `Computes the Collatz stop time of N (decimal or 0x hexadecimal) and the largest digit
count on its trajectory. Progress is checkpointed after every batch; interrupt with Ctrl+C
and run the same command again to resume.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{
			Config:  cfg,
			Version: stoptime.Version,
			In:      os.Stdin,
			Out:     os.Stdout,
		}
		if len(args) > 0 {
			opts.Number = args[0]
		}
		opts.RandomDigits, _ = cmd.Flags().GetUint64("random-digits")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Yes, _ = cmd.Flags().GetBool("yes")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunTrajectory(sigCtx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint64P("random-digits", "r", 0, "Use a random starting value with this many digits")
	runCmd.Flags().Bool("fresh", false, "With --random-digits, ignore a stored checkpoint")
	runCmd.Flags().Uint64("batch-size", 0, "Steps between checkpoints (default 100000)")
	runCmd.Flags().Bool("retire", false, "Delete the checkpoint once the trajectory reaches 1")
	runCmd.Flags().Bool("lock", false, "Hold an advisory lock on the checkpoint while running")
	runCmd.Flags().String("metrics-addr", "", "Serve /metrics and checkpoints on this address while running")
	runCmd.Flags().BoolP("yes", "y", false, "Answer yes to prompts")
	runCmd.Flags().BoolP("quiet", "q", false, "Print only \"<steps> <max digits>\"")
}
