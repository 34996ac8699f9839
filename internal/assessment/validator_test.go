package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairWellFormedInRange(t *testing.T) {
	raw := `{"risk_level":4,"safety_risk":3,"urgency":"high","damage_type":"Pothole",
	"damage_extent":"Localized","severity_justification":"Deep crack across lane.",
	"identified_risks":["vehicle damage"],"recommended_actions":["close lane","repair"]}`

	got := Repair(raw)
	assert.Equal(t, 4, got.RiskLevel)
	assert.Equal(t, 3, got.SafetyRisk)
	assert.Equal(t, "high", got.Urgency)
	assert.Equal(t, "Pothole", got.DamageType)
	assert.Equal(t, "Localized", got.DamageExtent)
	assert.Equal(t, []string{"vehicle damage"}, got.IdentifiedRisks)
	assert.Equal(t, []string{"close lane", "repair"}, got.RecommendedActions)
	assert.Empty(t, got.Error)
	assert.False(t, got.IsFallback())
}

func TestRepairClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"above max", `{"risk_level": 9}`, 5},
		{"way above max", `{"risk_level": 7}`, 5},
		{"zero", `{"risk_level": 0}`, 1},
		{"negative", `{"risk_level": -3}`, 1},
		{"truncates float", `{"risk_level": 3.9}`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.in).RiskLevel)
		})
	}
}

func TestRepairDefaultsMissingSeverity(t *testing.T) {
	tests := []string{
		`{}`,
		`{"risk_level": null}`,
		`{"risk_level": "severe"}`,
		`{"risk_level": ["3"]}`,
	}
	for _, in := range tests {
		got := Repair(in)
		assert.Equal(t, DefaultSeverity, got.RiskLevel, "input %s", in)
		assert.Equal(t, DefaultSeverity, got.SafetyRisk, "input %s", in)
	}
}

func TestRepairNumericStringAccepted(t *testing.T) {
	got := Repair(`{"risk_level":"4","safety_risk":"2"}`)
	assert.Equal(t, 4, got.RiskLevel)
	assert.Equal(t, 2, got.SafetyRisk)
}

func TestRepairUrgencyClosedSet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"urgency":"immediate"}`, "immediate"},
		{`{"urgency":"HIGH"}`, "high"},
		{`{"urgency":"critical"}`, "medium"}, // outside the closed set
		{`{"urgency":42}`, "medium"},
		{`{}`, "medium"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Repair(tt.in).Urgency, "input %s", tt.in)
	}
}

func TestRepairListCoercion(t *testing.T) {
	got := Repair(`{"identified_risks":"flooding","recommended_actions":{"a":1}}`)
	assert.Equal(t, []string{}, got.IdentifiedRisks)
	assert.Equal(t, []string{}, got.RecommendedActions)

	got = Repair(`{}`)
	assert.NotNil(t, got.IdentifiedRisks)
	assert.Empty(t, got.IdentifiedRisks)
}

func TestRepairNoJSONAtAll(t *testing.T) {
	for _, in := range []string{"", "I could not analyze this image.", "}{"} {
		got := Repair(in)
		require.NotNil(t, got)
		assert.True(t, got.IsFallback(), "input %q", in)
		assert.GreaterOrEqual(t, got.RiskLevel, MinSeverity)
		assert.LessOrEqual(t, got.RiskLevel, MaxSeverity)
		assert.GreaterOrEqual(t, got.SafetyRisk, MinSeverity)
		assert.LessOrEqual(t, got.SafetyRisk, MaxSeverity)
		assert.True(t, validUrgency(got.Urgency))
		assert.NotEmpty(t, got.DamageType)
		assert.NotNil(t, got.IdentifiedRisks)
		assert.NotNil(t, got.RecommendedActions)
	}
}

func TestRepairExtractsObjectFromProse(t *testing.T) {
	raw := "Here is my analysis:\n```json\n{\"risk_level\": 5, \"urgency\": \"immediate\"}\n```\nLet me know if you need more."
	got := Repair(raw)
	assert.Equal(t, 5, got.RiskLevel)
	assert.Equal(t, "immediate", got.Urgency)
}

func TestRepairAlmostJSON(t *testing.T) {
	// Trailing comma — invalid JSON, recoverable by the repair pass.
	got := Repair(`{"risk_level": 3, "urgency": "high",}`)
	assert.Equal(t, 3, got.RiskLevel)
	assert.Equal(t, "high", got.Urgency)
	assert.False(t, got.IsFallback())
}

func TestRepairIsFixedPoint(t *testing.T) {
	inputs := []*RiskAssessment{
		Repair(`{"risk_level":4,"safety_risk":1,"urgency":"low","damage_type":"Cracked sidewalk",
			"damage_extent":"Minor","severity_justification":"Shallow surface crack.",
			"identified_risks":["trip hazard"],"recommended_actions":["patch"]}`),
		GenericFallback(),
		QuotaFallback(),
		UnavailableFallback(),
		ParseFallback(),
	}
	for _, in := range inputs {
		data, err := json.Marshal(in)
		require.NoError(t, err)
		assert.Equal(t, in, Repair(string(data)))
	}
}

func TestRepairEndToEndExample(t *testing.T) {
	// The canonical clamping example: out-of-range severity plus an urgency
	// outside the closed set.
	got := Repair(`{"risk_level":9,"urgency":"critical"}`)
	assert.Equal(t, 5, got.RiskLevel)
	assert.Equal(t, "medium", got.Urgency)
	assert.Equal(t, []string{}, got.IdentifiedRisks)
}
