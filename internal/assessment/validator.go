package assessment

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Repair extracts a JSON object from raw model response text and coerces it
// into a fully-populated RiskAssessment. It is pure and total: it never
// returns an error, and malformed input is representable only as the
// already-valid generic fallback. Repair is a fixed point — running it over
// the JSON of an assessment it produced yields the same assessment.
func Repair(raw string) *RiskAssessment {
	obj, ok := extractObject(raw)
	if !ok {
		return ParseFallback()
	}
	return coerce(obj)
}

// extractObject locates the first top-level JSON object substring (first '{'
// to last '}') and parses it, running one jsonrepair pass before giving up
// on malformed output.
func extractObject(raw string) (map[string]any, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := raw[start : end+1]

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, true
	}

	// Models emit almost-JSON often enough that one repair pass pays for
	// itself: trailing commas, single quotes, unquoted keys.
	fixed, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(fixed), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// coerce applies the default table field by field. Whatever shape the input
// has, the output satisfies every RiskAssessment invariant.
func coerce(obj map[string]any) *RiskAssessment {
	return &RiskAssessment{
		RiskLevel:             coerceSeverity(obj["risk_level"]),
		SafetyRisk:            coerceSeverity(obj["safety_risk"]),
		Urgency:               coerceUrgency(obj["urgency"]),
		DamageType:            coerceString(obj["damage_type"], DefaultDamageType),
		DamageExtent:          coerceString(obj["damage_extent"], DefaultDamageExtent),
		SeverityJustification: coerceString(obj["severity_justification"], ""),
		IdentifiedRisks:       coerceStringList(obj["identified_risks"]),
		RecommendedActions:    coerceStringList(obj["recommended_actions"]),
		Error:                 coerceString(obj["error"], ""),
	}
}

// coerceSeverity converts a value to an int in [MinSeverity, MaxSeverity].
// Absent, null, or non-numeric values default to DefaultSeverity; numeric
// values are truncated to integer and clamped.
func coerceSeverity(v any) int {
	f, ok := toFloat(v)
	if !ok {
		return DefaultSeverity
	}
	n := int(f) // truncation, per the clamping contract
	if n < MinSeverity {
		return MinSeverity
	}
	if n > MaxSeverity {
		return MaxSeverity
	}
	return n
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceUrgency(v any) string {
	s, _ := v.(string)
	s = strings.ToLower(strings.TrimSpace(s))
	if !validUrgency(s) {
		return UrgencyMedium
	}
	return s
}

func coerceString(v any, def string) string {
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" && def != "" {
			return def
		}
		return s
	}
	return def
}

// coerceStringList converts a value to []string. Anything that is not
// list-shaped becomes the empty list; it never raises.
func coerceStringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		// Already-typed slices appear when re-validating our own output.
		if typed, ok := v.([]string); ok {
			return typed
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
