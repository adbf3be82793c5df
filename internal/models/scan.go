package models

// Vulnerability represents one concrete finding with its reproduction details
type Vulnerability struct {
	URL         string `json:"url" yaml:"url"`
	Method      string `json:"method" yaml:"method"`
	Parameter   string `json:"parameter" yaml:"parameter"`
	Payload     string `json:"payload" yaml:"payload"`
	Evidence    string `json:"evidence" yaml:"evidence"`
	Description string `json:"description" yaml:"description"`
}

// Scan represents a single vulnerability-class assessment run
type Scan struct {
	ID                   int             `json:"id" yaml:"id"`
	Type                 string          `json:"type" yaml:"type"`
	Status               ScanStatus      `json:"status" yaml:"status"`
	VulnerabilitiesFound int             `json:"vulnerabilitiesFound" yaml:"vulnerabilitiesFound"`
	URLsScanned          int             `json:"urlsScanned" yaml:"urlsScanned"`
	TimeTaken            string          `json:"timeTaken" yaml:"timeTaken"`
	VulnerabilityRate    int             `json:"vulnerabilityRate" yaml:"vulnerabilityRate"`
	Classification       RiskRating      `json:"classification" yaml:"classification"`
	RiskRating           RiskRating      `json:"riskRating" yaml:"riskRating"`
	Evidence             string          `json:"evidence" yaml:"evidence"`
	Vulnerabilities      []Vulnerability `json:"vulnerabilities" yaml:"vulnerabilities"`
}

// Report is the aggregate scan result for one target
type Report struct {
	URL          string   `json:"url" yaml:"url"`
	IP           string   `json:"ip" yaml:"ip"`
	OpenPorts    []string `json:"openPorts" yaml:"openPorts"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	ScanDate     string   `json:"scanDate" yaml:"scanDate"`
	ScanDuration string   `json:"scanDuration" yaml:"scanDuration"`
	Scans        []Scan   `json:"scans" yaml:"scans"`
}

// TotalFindings returns the number of individual vulnerabilities across all scans
func (r *Report) TotalFindings() int {
	total := 0
	for _, s := range r.Scans {
		total += len(s.Vulnerabilities)
	}
	return total
}
