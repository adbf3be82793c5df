package models

// ScanStatus represents the verification state of a scan's findings
type ScanStatus string

const (
	StatusConfirmed     ScanStatus = "CONFIRMED"
	StatusPotential     ScanStatus = "POTENTIAL"
	StatusNotVulnerable ScanStatus = "NOT_VULNERABLE"
)

// RiskRating represents the severity label attached to a scan
type RiskRating string

const (
	RiskCritical RiskRating = "Critical"
	RiskHigh     RiskRating = "High"
	RiskMedium   RiskRating = "Medium"
	RiskLow      RiskRating = "Low"
	RiskInfo     RiskRating = "Info"
)
