// Package diff computes the delta between two scan reports.
// It identifies ports, technologies and findings that appeared or went away
// between an earlier and a later report for the same target.
package diff

import (
	"fmt"
	"sort"

	"github.com/hakim/scanreports/internal/models"
)

// Finding associates a vulnerability with the scan type that produced it.
type Finding struct {
	ScanType      string
	RiskRating    models.RiskRating
	Vulnerability models.Vulnerability
}

// DiffResult holds the complete delta between a current and a previous report.
// All slice fields are non-nil (empty slices, not nil) so callers can range
// over them unconditionally.
type DiffResult struct {
	PreviousTarget string
	CurrentTarget  string

	// Port changes
	NewPorts    []string
	ClosedPorts []string

	// Technology changes
	NewTechnologies     []string
	RemovedTechnologies []string

	// Finding changes
	NewFindings      []Finding
	ResolvedFindings []Finding

	// Summary counts
	CurrentPortCount     int
	PreviousPortCount    int
	CurrentFindingCount  int
	PreviousFindingCount int
	CurrentScanCount     int
	PreviousScanCount    int
}

// Empty reports whether nothing changed between the two reports
func (dr *DiffResult) Empty() bool {
	return len(dr.NewPorts) == 0 &&
		len(dr.ClosedPorts) == 0 &&
		len(dr.NewTechnologies) == 0 &&
		len(dr.RemovedTechnologies) == 0 &&
		len(dr.NewFindings) == 0 &&
		len(dr.ResolvedFindings) == 0
}

// ComputeDiff calculates the delta between current and previous reports.
// Both arguments must be non-nil; pass an empty Report for the
// "no previous report" case.
func ComputeDiff(current, previous *models.Report) *DiffResult {
	dr := &DiffResult{
		PreviousTarget: previous.URL,
		CurrentTarget:  current.URL,
	}

	dr.NewPorts, dr.ClosedPorts = diffStrings(current.OpenPorts, previous.OpenPorts)
	dr.NewTechnologies, dr.RemovedTechnologies = diffStrings(current.Technologies, previous.Technologies)
	diffFindings(dr, findings(current), findings(previous))

	dr.CurrentPortCount = len(current.OpenPorts)
	dr.PreviousPortCount = len(previous.OpenPorts)
	dr.CurrentFindingCount = current.TotalFindings()
	dr.PreviousFindingCount = previous.TotalFindings()
	dr.CurrentScanCount = len(current.Scans)
	dr.PreviousScanCount = len(previous.Scans)

	return dr
}

// diffStrings returns the sorted values only in current and only in previous
func diffStrings(current, previous []string) (added, removed []string) {
	prev := make(map[string]bool, len(previous))
	for _, s := range previous {
		prev[s] = true
	}
	curr := make(map[string]bool, len(current))
	for _, s := range current {
		curr[s] = true
	}

	added, removed = []string{}, []string{}
	for s := range curr {
		if !prev[s] {
			added = append(added, s)
		}
	}
	for s := range prev {
		if !curr[s] {
			removed = append(removed, s)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// findingKey uniquely identifies a finding.
// Format: "scanType::METHOD url [parameter]"
func findingKey(f Finding) string {
	v := f.Vulnerability
	return fmt.Sprintf("%s::%s %s [%s]", f.ScanType, v.Method, v.URL, v.Parameter)
}

func findings(r *models.Report) []Finding {
	var out []Finding
	for _, s := range r.Scans {
		for _, v := range s.Vulnerabilities {
			out = append(out, Finding{ScanType: s.Type, RiskRating: s.RiskRating, Vulnerability: v})
		}
	}
	return out
}

// diffFindings computes new and resolved findings.
func diffFindings(dr *DiffResult, current, previous []Finding) {
	prevFindings := make(map[string]Finding, len(previous))
	for _, f := range previous {
		prevFindings[findingKey(f)] = f
	}

	currFindings := make(map[string]Finding, len(current))
	for _, f := range current {
		currFindings[findingKey(f)] = f
	}

	dr.NewFindings = []Finding{}
	dr.ResolvedFindings = []Finding{}

	// New: in current but not in previous
	for key, f := range currFindings {
		if _, exists := prevFindings[key]; !exists {
			dr.NewFindings = append(dr.NewFindings, f)
		}
	}

	// Resolved: in previous but not in current
	for key, f := range prevFindings {
		if _, exists := currFindings[key]; !exists {
			dr.ResolvedFindings = append(dr.ResolvedFindings, f)
		}
	}

	sortFindings(dr.NewFindings)
	sortFindings(dr.ResolvedFindings)
}

// riskRank maps a RiskRating to a sort priority (lower = more severe).
var riskRank = map[models.RiskRating]int{
	models.RiskCritical: 0,
	models.RiskHigh:     1,
	models.RiskMedium:   2,
	models.RiskLow:      3,
	models.RiskInfo:     4,
}

// sortFindings orders findings critical-first, then by key for deterministic output
func sortFindings(fs []Finding) {
	sort.Slice(fs, func(i, j int) bool {
		ri, ok := riskRank[fs[i].RiskRating]
		if !ok {
			ri = len(riskRank)
		}
		rj, ok := riskRank[fs[j].RiskRating]
		if !ok {
			rj = len(riskRank)
		}
		if ri != rj {
			return ri < rj
		}
		return findingKey(fs[i]) < findingKey(fs[j])
	})
}
