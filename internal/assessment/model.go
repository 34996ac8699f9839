// Package assessment implements the risk-assessment pipeline for submitted
// report photos: it composes the vision prompt, invokes Gemini, and repairs
// whatever comes back into a fully-populated, bounded RiskAssessment.
package assessment

// Urgency values the pipeline will emit. "pending" is reserved for the
// quota-exhausted fallback and never produced by a genuine assessment
// unless the model itself returns it.
const (
	UrgencyImmediate = "immediate"
	UrgencyHigh      = "high"
	UrgencyMedium    = "medium"
	UrgencyLow       = "low"
	UrgencyPending   = "pending"
)

// Bounds and defaults for the two severity fields.
const (
	MinSeverity     = 1
	MaxSeverity     = 5
	DefaultSeverity = 2
)

// Default sentinel strings used when the model omits a field.
const (
	DefaultDamageType   = "Manual Review Needed"
	DefaultDamageExtent = "Unknown"
)

// RiskAssessment is the machine judgment attached to a report. Every field
// is always populated and in range before an instance leaves this package;
// callers never observe a partially-shaped object. A non-empty Error marks
// the instance as a fallback rather than a genuine model assessment.
type RiskAssessment struct {
	RiskLevel             int      `json:"risk_level"`
	SafetyRisk            int      `json:"safety_risk"`
	Urgency               string   `json:"urgency"`
	DamageType            string   `json:"damage_type"`
	DamageExtent          string   `json:"damage_extent"`
	SeverityJustification string   `json:"severity_justification"`
	IdentifiedRisks       []string `json:"identified_risks"`
	RecommendedActions    []string `json:"recommended_actions"`
	Error                 string   `json:"error,omitempty"`
}

// IsFallback reports whether this assessment was produced by a failure path
// rather than genuine inference.
func (a *RiskAssessment) IsFallback() bool {
	return a != nil && a.Error != ""
}

func validUrgency(u string) bool {
	switch u {
	case UrgencyImmediate, UrgencyHigh, UrgencyMedium, UrgencyLow, UrgencyPending:
		return true
	}
	return false
}
