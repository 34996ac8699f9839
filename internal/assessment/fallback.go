package assessment

// The fallback classifier: every failure mode below maps to a distinct,
// fully schema-conformant assessment. The Error field is what tells the
// orchestrator (and the admin dashboard) that no genuine inference happened.

// GenericFallback covers transport errors and any other failure without a
// more specific classification.
func GenericFallback() *RiskAssessment {
	return &RiskAssessment{
		RiskLevel:             DefaultSeverity,
		SafetyRisk:            DefaultSeverity,
		Urgency:               UrgencyLow,
		DamageType:            DefaultDamageType,
		DamageExtent:          DefaultDamageExtent,
		SeverityJustification: "Automated assessment failed; severity defaults applied.",
		IdentifiedRisks:       []string{},
		RecommendedActions:    []string{"Inspect manually"},
		Error:                 "assessment failed",
	}
}

// ParseFallback is returned when the model responded but no JSON object
// could be recovered from the text.
func ParseFallback() *RiskAssessment {
	fb := GenericFallback()
	fb.SeverityJustification = "Model response could not be parsed; severity defaults applied."
	fb.Error = "unparsable model response"
	return fb
}

// QuotaFallback signals retry-later semantics: the service is fine, the
// quota is not. Urgency "pending" is reserved for exactly this case.
func QuotaFallback() *RiskAssessment {
	return &RiskAssessment{
		RiskLevel:             DefaultSeverity,
		SafetyRisk:            DefaultSeverity,
		Urgency:               UrgencyPending,
		DamageType:            "AI Quota Exceeded - Manual Review Required",
		DamageExtent:          DefaultDamageExtent,
		SeverityJustification: "",
		IdentifiedRisks:       []string{},
		RecommendedActions:    []string{"AI service quota exceeded. Please review manually or try again later."},
		Error:                 "API quota exceeded",
	}
}

// UnavailableFallback is used when inference is not configured at all; the
// external service is never called.
func UnavailableFallback() *RiskAssessment {
	return &RiskAssessment{
		RiskLevel:             DefaultSeverity,
		SafetyRisk:            DefaultSeverity,
		Urgency:               UrgencyLow,
		DamageType:            "AI Assessment Unavailable",
		DamageExtent:          DefaultDamageExtent,
		SeverityJustification: "",
		IdentifiedRisks:       []string{},
		RecommendedActions:    []string{"Inspect manually"},
		Error:                 "inference service not configured",
	}
}
