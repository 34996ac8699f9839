package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/opencivic/infrawatch/internal/observability/metrics"
	"github.com/opencivic/infrawatch/pkg/logging"
)

// Assessor runs one complete assessment: prompt composition, a single
// inference attempt, and repair of the response. It never returns an error;
// every failure mode degrades to a distinct fallback assessment.
type Assessor struct {
	client  InferenceClient
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
}

// NewAssessor creates an Assessor. A nil client means inference is not
// configured; Assess then short-circuits to the unavailable fallback
// without any network call.
func NewAssessor(client InferenceClient, logger *logging.Logger, m *metrics.PipelineMetrics) *Assessor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Assessor{client: client, logger: logger, metrics: m}
}

// Enabled reports whether genuine inference is configured.
func (a *Assessor) Enabled() bool {
	return a != nil && a.client != nil
}

// Assess produces a RiskAssessment for the given normalized JPEG image.
// The result is always fully populated and in range.
func (a *Assessor) Assess(ctx context.Context, imageJPEG []byte, category, description string) *RiskAssessment {
	if !a.Enabled() {
		a.metrics.ObserveAssessment("unavailable")
		return UnavailableFallback()
	}

	prompt := BuildPrompt(category, description)

	start := time.Now()
	text, err := a.client.Generate(ctx, prompt, imageJPEG)
	a.metrics.ObserveInferenceLatency(time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			a.logger.Warn("inference quota exceeded", "error", err)
			a.metrics.ObserveAssessment("quota")
			return QuotaFallback()
		case errors.Is(err, ErrUnavailable):
			a.metrics.ObserveAssessment("unavailable")
			return UnavailableFallback()
		default:
			a.logger.Error("inference call failed", "error", err)
			a.metrics.ObserveAssessment("transport")
			return GenericFallback()
		}
	}

	result := Repair(text)
	if result.IsFallback() {
		a.logger.Warn("model response unparsable", "response_len", len(text))
		a.metrics.ObserveAssessment("unparsable")
	} else {
		a.metrics.ObserveAssessment("genuine")
	}
	return result
}
