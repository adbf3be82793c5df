package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hakim/scanreports/internal/models"
	"github.com/hakim/scanreports/internal/report"
	"github.com/hakim/scanreports/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump reports as JSON, YAML or Markdown",
	Long: `Export reports from the configured provider.

Without --id every report is exported. JSON output matches the API body
(a single object with --id, an array otherwise). YAML output for all
reports uses the fixture layout, so it can be fed back through
data.fixtures_path. Markdown renders a human-readable document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		id, _ := cmd.Flags().GetInt("id")
		out, _ := cmd.Flags().GetString("out")

		store, err := openProvider(cfg)
		if err != nil {
			return err
		}

		var entries []storage.Entry
		if cmd.Flags().Changed("id") {
			e, err := store.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("report %d: %w", id, err)
			}
			entries = []storage.Entry{e}
		} else {
			entries, _, err = store.List(cmd.Context(), 0, store.Len())
			if err != nil {
				return fmt.Errorf("listing reports: %w", err)
			}
		}

		var buf bytes.Buffer
		if err := encodeEntries(&buf, format, entries, cmd.Flags().Changed("id")); err != nil {
			return err
		}

		if out == "" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("writing export to %s: %w", out, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d report(s) to %s\n", len(entries), out)
		return nil
	},
}

// encodeEntries writes entries to w in the requested format
func encodeEntries(w io.Writer, format string, entries []storage.Entry, single bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if single {
			return enc.Encode(entries[0].Report)
		}
		reports := make([]models.Report, len(entries))
		for i, e := range entries {
			reports[i] = e.Report
		}
		return enc.Encode(reports)

	case "yaml":
		if single {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(entries[0].Report); err != nil {
				return err
			}
			return enc.Close()
		}
		data, err := storage.MarshalFixtures(entries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err

	case "markdown", "md":
		for i, e := range entries {
			if i > 0 {
				if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
					return err
				}
			}
			if err := report.WriteMarkdown(w, &e.Report); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want json, yaml or markdown)", format)
	}
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "output format: json, yaml or markdown")
	exportCmd.Flags().Int("id", 0, "export only the report with this id")
	exportCmd.Flags().StringP("out", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
