// Package report renders scan reports for humans.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hakim/scanreports/internal/models"
)

// riskOrder defines the display order for the risk summary (most severe first).
var riskOrder = []models.RiskRating{
	models.RiskCritical,
	models.RiskHigh,
	models.RiskMedium,
	models.RiskLow,
	models.RiskInfo,
}

// Markdown renders r as a markdown document
func Markdown(r *models.Report) string {
	var b strings.Builder

	// Header
	b.WriteString("# Vulnerability Scan Report\n\n")
	b.WriteString(fmt.Sprintf("**Target:** %s (%s)\n", r.URL, orDash(r.IP)))
	b.WriteString(fmt.Sprintf("**Date:** %s\n", orDash(r.ScanDate)))
	b.WriteString(fmt.Sprintf("**Duration:** %s\n", orDash(r.ScanDuration)))
	b.WriteString(fmt.Sprintf("**Open ports:** %s | **Technologies:** %s\n\n",
		joinOrDash(r.OpenPorts), joinOrDash(r.Technologies)))

	// Scan overview
	b.WriteString("## Scans\n\n")
	if len(r.Scans) > 0 {
		b.WriteString("| # | Type | Status | Risk | Findings | URLs Scanned | Rate | Time (s) |\n")
		b.WriteString("|---|------|--------|------|----------|--------------|------|----------|\n")
		for _, s := range r.Scans {
			b.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %d | %d%% | %s |\n",
				s.ID, escapeCell(s.Type), s.Status, s.RiskRating, s.VulnerabilitiesFound,
				s.URLsScanned, s.VulnerabilityRate, orDash(s.TimeTaken)))
		}
	} else {
		b.WriteString("No scans recorded.\n")
	}
	b.WriteString("\n")

	// One section per scan with its findings
	for _, s := range r.Scans {
		b.WriteString(fmt.Sprintf("## %s\n\n", s.Type))
		if s.Evidence != "" {
			b.WriteString(fmt.Sprintf("> %s\n\n", s.Evidence))
		}

		if len(s.Vulnerabilities) == 0 {
			b.WriteString("No findings.\n\n")
			continue
		}

		b.WriteString("| Method | URL | Parameter | Payload | Evidence |\n")
		b.WriteString("|--------|-----|-----------|---------|----------|\n")
		for _, v := range s.Vulnerabilities {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | `%s` | %s |\n",
				v.Method, escapeCell(v.URL), escapeCell(orDash(v.Parameter)),
				escapeCode(v.Payload), escapeCell(orDash(v.Evidence))))
		}
		b.WriteString("\n")

		for _, v := range s.Vulnerabilities {
			if v.Description != "" {
				b.WriteString(fmt.Sprintf("- %s\n", v.Description))
			}
		}
		b.WriteString("\n")
	}

	// Summary section
	counts := findingsByRisk(r.Scans)
	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- **Total findings:** %d\n", r.TotalFindings()))
	for _, risk := range riskOrder {
		b.WriteString(fmt.Sprintf("- **%s:** %d\n", risk, counts[risk]))
	}

	return b.String()
}

// WriteMarkdown renders r and writes it to w
func WriteMarkdown(w io.Writer, r *models.Report) error {
	_, err := io.WriteString(w, Markdown(r))
	return err
}

// WriteMarkdownFile renders r and writes it to the specified output path
func WriteMarkdownFile(r *models.Report, outputPath string) error {
	if err := os.WriteFile(outputPath, []byte(Markdown(r)), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}

// findingsByRisk counts individual findings per scan risk rating
func findingsByRisk(scans []models.Scan) map[models.RiskRating]int {
	counts := make(map[models.RiskRating]int)
	for _, s := range scans {
		counts[s.RiskRating] += len(s.Vulnerabilities)
	}
	return counts
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

// escapeCell keeps pipes from breaking table columns
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// escapeCode makes s safe inside a single-backtick code span within a table
func escapeCode(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	return escapeCell(s)
}
