package main

import (
	"os"

	"github.com/aretw0/stoptime"
	"github.com/aretw0/stoptime/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve checkpoints and metrics over HTTP",
	Long:  `Starts a read-only HTTP server exposing /health, /metrics, /checkpoints and /checkpoints/{digits}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		debug, _ := cmd.Flags().GetBool("debug")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.Serve(sigCtx, cli.ServeOptions{
			Config:  cfg,
			Addr:    ":" + port,
			Debug:   debug,
			Version: stoptime.Version,
			Out:     os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
