package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hakim/scanreports/internal/config"
	"github.com/spf13/cobra"
)

var (
	initForce bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Creates scanreports.yaml with every setting at its default value.

Edit data.fixtures_path to serve reports from a file instead of the
built-in sample report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := filepath.Join(initDir, "scanreports.yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("config file already exists at %s. Use --force to overwrite", configPath)
		}

		if err := os.MkdirAll(initDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", initDir, err)
		}

		if err := config.WriteDefault(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		// Make sure what we wrote loads back cleanly
		if _, err := config.Load(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s with default configuration\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'scanreports serve' to start the API.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "output directory")
	rootCmd.AddCommand(initCmd)
}
