package main

import (
	"fmt"
	"os"

	"numtree-backend/infrastructure/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "numtree",
	Short: "numtree serves calculation trees over HTTP",
	Long: `numtree stores trees that start from a number and grow by
arithmetic operations, each applied to the result of its parent.`,
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
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML config file, overrides CONFIG_FILE")
}

// loadConfig resolves the --config flag before reading the environment
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv("CONFIG_FILE", path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
