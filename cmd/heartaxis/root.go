package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/heartaxis/internal/cli"
	"github.com/aretw0/heartaxis/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "heartaxis",
	Short: "Heart axis calculator",
	Long: `heartaxis computes the electrical axis of the heart from ECG leads I and III,
either from the net sums of each lead or from their R and QS wave amplitudes.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	addGlobalFlags(rootCmd)
}

// addGlobalFlags declares the persistent flags (available to all commands).
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "heartaxis.yaml", "Configuration file (YAML or JSON)")
	cmd.PersistentFlags().String("dir", "", "Directory of the file session store (overrides config)")
	cmd.PersistentFlags().String("store", "", "Session store backend: memory, file or redis (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// loadConfig reads the configuration file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Store.Dir = dir
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	logger, err := cli.NewLogger(cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
