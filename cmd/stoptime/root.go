package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stoptime/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stoptime",
	Short: "stoptime computes Collatz stop times of arbitrarily large integers",
	Long: `stoptime follows the Collatz trajectory of a starting value down to 1, counting steps
and the largest digit count reached. Long runs checkpoint their progress and resume
where they stopped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	pf.String("env-file", "", "Dotenv file (default ./"+config.DefaultEnvFile+" when present)")
	pf.String("store", "", "Checkpoint store: memory, file, sqlite or redis")
	pf.String("dir", "", "Checkpoint directory for the file store")
	pf.String("sqlite-path", "", "Database path for the sqlite store")
	pf.String("redis-addr", "", "Redis address for the redis store")
	pf.String("redis-password", "", "Redis password")
	pf.Int("redis-db", 0, "Redis database number")
	pf.String("redis-prefix", "", "Key prefix for the redis store")
	pf.Bool("debug", false, "Enable debug logging on stderr")
}

// loadConfig resolves the configuration, with explicitly set flags taking precedence.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(config.Options{File: file, EnvFile: envFile})
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath, _ = flags.GetString("sqlite-path")
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-password") {
		cfg.Redis.Password, _ = flags.GetString("redis-password")
	}
	if flags.Changed("redis-db") {
		cfg.Redis.DB, _ = flags.GetInt("redis-db")
	}
	if flags.Changed("redis-prefix") {
		cfg.Redis.Prefix, _ = flags.GetString("redis-prefix")
	}
	if flags.Lookup("batch-size") != nil && flags.Changed("batch-size") {
		cfg.BatchSize, _ = flags.GetUint64("batch-size")
	}
	if flags.Lookup("retire") != nil && flags.Changed("retire") {
		cfg.Retire, _ = flags.GetBool("retire")
	}
	if flags.Lookup("lock") != nil && flags.Changed("lock") {
		cfg.Lock, _ = flags.GetBool("lock")
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = flags.GetString("metrics-addr")
	}
	return cfg, cfg.Validate()
}
