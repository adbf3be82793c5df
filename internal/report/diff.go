package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/hakim/scanreports/internal/diff"
)

// DiffMarkdown renders the delta between two reports as markdown
func DiffMarkdown(result *diff.DiffResult, previousID, currentID int) string {
	var b strings.Builder

	b.WriteString("# Scan Diff Report\n\n")
	b.WriteString(fmt.Sprintf("**Previous:** #%d %s\n", previousID, orDash(result.PreviousTarget)))
	b.WriteString(fmt.Sprintf("**Current:** #%d %s\n\n", currentID, orDash(result.CurrentTarget)))

	if result.Empty() {
		b.WriteString("No changes detected.\n")
		return b.String()
	}

	writeDiffSummaryTable(&b, result)
	writeStringChanges(&b, "New Open Ports", "+", result.NewPorts)
	writeStringChanges(&b, "Closed Ports", "-", result.ClosedPorts)
	writeStringChanges(&b, "New Technologies", "+", result.NewTechnologies)
	writeStringChanges(&b, "Removed Technologies", "-", result.RemovedTechnologies)
	writeFindingChanges(&b, "New Findings", "+", result.NewFindings)
	writeFindingChanges(&b, "Resolved Findings", "-", result.ResolvedFindings)

	return b.String()
}

// WriteDiffReport renders the diff and writes it to outputPath
func WriteDiffReport(result *diff.DiffResult, previousID, currentID int, outputPath string) error {
	content := DiffMarkdown(result, previousID, currentID)
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report to %s: %w", outputPath, err)
	}
	return nil
}

// writeDiffSummaryTable writes the three-row comparison table.
func writeDiffSummaryTable(b *strings.Builder, r *diff.DiffResult) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Previous | Current | Change |\n")
	b.WriteString("|----------|----------|---------|--------|\n")

	b.WriteString(fmt.Sprintf("| Open Ports | %d | %d | %s |\n",
		r.PreviousPortCount, r.CurrentPortCount, formatChange(len(r.NewPorts), len(r.ClosedPorts))))
	b.WriteString(fmt.Sprintf("| Findings | %d | %d | %s |\n",
		r.PreviousFindingCount, r.CurrentFindingCount, formatChange(len(r.NewFindings), len(r.ResolvedFindings))))
	b.WriteString(fmt.Sprintf("| Scans | %d | %d | - |\n",
		r.PreviousScanCount, r.CurrentScanCount))

	b.WriteString("\n")
}

// writeStringChanges renders a bullet list section. Skipped when empty.
func writeStringChanges(b *strings.Builder, title, sign string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(items)))
	for _, s := range items {
		b.WriteString(fmt.Sprintf("- %s\n", s))
	}
	b.WriteString("\n")
}

// writeFindingChanges renders a findings table. Skipped when empty.
func writeFindingChanges(b *strings.Builder, title, sign string, findings []diff.Finding) {
	if len(findings) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("## %s (%s%d)\n\n", title, sign, len(findings)))
	b.WriteString("| Risk | Type | Method | URL | Parameter |\n")
	b.WriteString("|------|------|--------|-----|-----------|\n")
	for _, f := range findings {
		v := f.Vulnerability
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			orDash(string(f.RiskRating)), escapeCell(f.ScanType), v.Method,
			escapeCell(v.URL), escapeCell(orDash(v.Parameter))))
	}
	b.WriteString("\n")
}

// formatChange returns a human-readable change string such as "+3 / -1".
// When there are no additions and no removals it returns "none".
func formatChange(added, removed int) string {
	if added == 0 && removed == 0 {
		return "none"
	}
	parts := make([]string, 0, 2)
	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d", added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d", removed))
	}
	return strings.Join(parts, " / ")
}
