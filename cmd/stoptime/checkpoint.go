package main

import (
	"os"

	"github.com/aretw0/stoptime/internal/cli"
	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:     "checkpoint",
	Aliases: []string{"cp"},
	Short:   "Manage stored checkpoints",
	Long:    `List, inspect, and remove checkpoints in the configured store.`,
}

var checkpointLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all checkpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.ListCheckpoints(cmd.Context(), b.Store, os.Stdout)
		})
	},
}

var checkpointInspectCmd = &cobra.Command{
	Use:   "inspect <digits>",
	Short: "Print the checkpoint record for a digit count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.InspectCheckpoint(cmd.Context(), b.Store, args[0], os.Stdout)
		})
	},
}

var checkpointRmCmd = &cobra.Command{
	Use:   "rm <digits>...",
	Short: "Remove one or more checkpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		yes, _ := cmd.Flags().GetBool("yes")
		if !all && len(args) == 0 {
			return cmd.Usage()
		}
		return withBackend(cmd, func(b *cli.Backend) error {
			return cli.RemoveCheckpoints(cmd.Context(), b.Store, cli.RemoveOptions{
				Digits: args,
				All:    all,
				Yes:    yes,
				In:     os.Stdin,
				Out:    os.Stdout,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointLsCmd)
	checkpointCmd.AddCommand(checkpointInspectCmd)
	checkpointCmd.AddCommand(checkpointRmCmd)

	checkpointRmCmd.Flags().Bool("all", false, "Remove every checkpoint")
	checkpointRmCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func withBackend(cmd *cobra.Command, fn func(*cli.Backend) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	debug, _ := cmd.Flags().GetBool("debug")

	b, err := cli.OpenBackend(cmd.Context(), cfg, cli.NewLogger(cfg, debug), nil)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}
