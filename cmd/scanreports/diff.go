package main

import (
	"fmt"

	"github.com/hakim/scanreports/internal/diff"
	"github.com/hakim/scanreports/internal/report"
	"github.com/hakim/scanreports/internal/storage"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two reports and show what changed",
	Long: `Compare two reports from the configured provider.

Open ports, technologies and individual findings are compared. A finding is
identified by its scan type, method, URL and parameter.

Without --from and --to the latest report is compared against the one
before it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fromID, _ := cmd.Flags().GetInt("from")
		toID, _ := cmd.Flags().GetInt("to")
		out, _ := cmd.Flags().GetString("out")

		store, err := openProvider(cfg)
		if err != nil {
			return err
		}

		// Resolve which reports to compare
		var previous, current storage.Entry
		if cmd.Flags().Changed("from") != cmd.Flags().Changed("to") {
			return fmt.Errorf("--from and --to must be given together")
		}
		if cmd.Flags().Changed("from") {
			if previous, err = store.Get(cmd.Context(), fromID); err != nil {
				return fmt.Errorf("report %d: %w", fromID, err)
			}
			if current, err = store.Get(cmd.Context(), toID); err != nil {
				return fmt.Errorf("report %d: %w", toID, err)
			}
		} else {
			latest, _, err := store.List(cmd.Context(), 0, 2)
			if err != nil {
				return fmt.Errorf("listing reports: %w", err)
			}
			if len(latest) < 2 {
				fmt.Fprintln(cmd.OutOrStdout(), "[!] Need at least two reports to compare")
				return nil
			}
			current, previous = latest[0], latest[1]
		}

		result := diff.ComputeDiff(&current.Report, &previous.Report)

		if out != "" {
			if err := report.WriteDiffReport(result, previous.ID, current.ID, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[+] Diff report written to %s\n", out)
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), report.DiffMarkdown(result, previous.ID, current.ID))
		return nil
	},
}

func init() {
	diffCmd.Flags().Int("from", 0, "id of the earlier report")
	diffCmd.Flags().Int("to", 0, "id of the later report")
	diffCmd.Flags().StringP("out", "o", "", "write the markdown diff to file instead of stdout")
	rootCmd.AddCommand(diffCmd)
}
