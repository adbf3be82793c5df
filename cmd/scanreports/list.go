package main

import (
	"fmt"
	"io"

	"github.com/hakim/scanreports/internal/storage"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the available reports",
	Long: `Display a formatted table of the reports the server would serve.

Reports are listed newest-first, the same order as GET /api/reports.
Use --limit to cap the number of rows shown (default: 10).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openProvider(cfg)
		if err != nil {
			return err
		}

		if limit <= 0 {
			limit = store.Len()
		}
		entries, total, err := store.List(cmd.Context(), 0, limit)
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}

		printReportTable(cmd.OutOrStdout(), entries, total)
		return nil
	},
}

func printReportTable(w io.Writer, entries []storage.Entry, total int) {
	if total == 0 {
		fmt.Fprintln(w, "No reports found")
		return
	}

	const separator = "────────────────────────────────────────────────────────────────────────"

	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "  %-4s  %-30s  %-15s  %-26s  %s\n", "ID", "Target", "IP", "Scanned", "Findings")
	fmt.Fprintln(w, separator)

	for _, e := range entries {
		fmt.Fprintf(w, "  %-4d  %-30s  %-15s  %-26s  %d\n",
			e.ID, truncate(e.Report.URL, 30), orDash(e.Report.IP), orDash(e.Report.ScanDate), e.Report.TotalFindings())
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Showing %d of %d report(s)\n\n", len(entries), total)
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	listCmd.Flags().Int("limit", 10, "Maximum number of reports to display (0 for all)")
	rootCmd.AddCommand(listCmd)
}
