// Package sample builds the compiled-in demonstration report served when no
// fixture file is configured.
package sample

import (
	"time"

	"github.com/hakim/scanreports/internal/models"
)

// ScanDateLayout is the display format used for Report.ScanDate.
const ScanDateLayout = "Jan 02, 2006 | 15:04:05 UTC"

// Report returns the sample report stamped with the given scan time.
// Every call returns a fresh value; callers may keep it without copying.
func Report(scannedAt time.Time) models.Report {
	return models.Report{
		URL:          "https://example.com",
		IP:           "192.168.1.1",
		OpenPorts:    []string{"80", "443"},
		Technologies: []string{"PHP (8.1.0)", "nginx (1.20.1)"},
		ScanDate:     scannedAt.UTC().Format(ScanDateLayout),
		ScanDuration: "1h 23m | 85MB bandwidth",
		Scans: []models.Scan{
			{
				ID:                   1,
				Type:                 "SQL Injection",
				Status:               models.StatusConfirmed,
				VulnerabilitiesFound: 1,
				URLsScanned:          5,
				TimeTaken:            "120.45",
				VulnerabilityRate:    20,
				Classification:       models.RiskHigh,
				RiskRating:           models.RiskHigh,
				Evidence:             "SQL injection found in login form",
				Vulnerabilities: []models.Vulnerability{
					{
						URL:         "https://example.com/login",
						Method:      "POST",
						Parameter:   "username",
						Payload:     "admin' OR '1'='1",
						Evidence:    "Authentication bypass successful",
						Description: "SQL injection vulnerability allows authentication bypass and potential data extraction.",
					},
				},
			},
			{
				ID:                   2,
				Type:                 "Cross-Site Scripting (XSS)",
				Status:               models.StatusConfirmed,
				VulnerabilitiesFound: 2,
				URLsScanned:          3,
				TimeTaken:            "89.30",
				VulnerabilityRate:    67,
				Classification:       models.RiskMedium,
				RiskRating:           models.RiskMedium,
				Evidence:             "XSS payload executed",
				Vulnerabilities: []models.Vulnerability{
					{
						URL:         "https://example.com/search",
						Method:      "GET",
						Parameter:   "q",
						Payload:     "<script>alert('XSS')</script>",
						Evidence:    "Script executed in browser",
						Description: "Reflected XSS vulnerability allows execution of arbitrary JavaScript code.",
					},
					{
						URL:         "https://example.com/comment",
						Method:      "POST",
						Parameter:   "comment",
						Payload:     "<img src=x onerror=alert('XSS')>",
						Evidence:    "Image tag with onerror executed",
						Description: "Stored XSS vulnerability in comment system.",
					},
				},
			},
		},
	}
}
