package audit

// Severity classifies how much a finding matters. Informational only: the
// scorer works from Weight and never re-derives it from severity.
type Severity string

const (
	SeverityLow  Severity = "low"
	SeverityMed  Severity = "medium"
	SeverityHigh Severity = "high"
)

// Finding is one detected deviation from the recommended power policy.
// Findings are produced by hardware profiles and consumed read-only by the
// plan builder and the scorer.
type Finding struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Current     string   `json:"current_value"`
	Recommended string   `json:"recommended_value"`
	// Path is the sysfs/config target this finding relates to, when one exists.
	Path string `json:"path,omitempty"`
	// Weight is the score deduction for this finding, 0-100.
	Weight int `json:"weight"`
}

// Score computes the weighted audit score in [0, 100]. A clean system scores
// 100; each finding subtracts its weight, floored at 0. Order-independent.
func Score(findings []Finding) int {
	score := 100
	for _, f := range findings {
		score -= f.Weight
	}
	if score < 0 {
		return 0
	}
	return score
}
