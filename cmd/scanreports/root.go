package main

import (
	"fmt"

	"github.com/hakim/scanreports/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scanreports",
	Short: "Read-only REST API for vulnerability scan reports",
	Long: `ScanReports serves vulnerability scan reports over a small JSON API.

Reports come from a YAML/JSON fixture file when data.fixtures_path is set,
otherwise from a built-in sample report. The same reports can be listed or
exported from the command line without starting the server.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	// A bare invocation starts the API, like `scanreports serve`
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":    true,
			"help":    true,
			"version": true,
		}

		if skipConfig[cmd.Name()] {
			return nil
		}

		// An empty path searches the default locations and falls back to defaults
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if verbose {
			cfg.Log.Level = "debug"
		}

		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search for scanreports.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	// Version flag
	rootCmd.Version = "0.1.0-dev"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
