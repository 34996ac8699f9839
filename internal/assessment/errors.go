package assessment

import (
	"errors"
	"strings"
)

var (
	// ErrUnavailable means inference is not configured (no API key); the
	// service is never called in this state.
	ErrUnavailable = errors.New("assessment: inference service not configured")

	// ErrQuotaExceeded means the inference service rejected the call for
	// rate or usage limits. Retry-later semantics, not a permanent defect.
	ErrQuotaExceeded = errors.New("assessment: inference quota exceeded")

	// ErrTransport covers every other inference invocation failure.
	ErrTransport = errors.New("assessment: inference call failed")
)

// quotaSignatures are the known markers of quota/resource exhaustion in
// Gemini error surfaces.
var quotaSignatures = []string{"429", "RESOURCE_EXHAUSTED", "quota"}

// isQuotaError matches known quota-exhaustion signatures in an error string.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, sig := range quotaSignatures {
		if strings.Contains(msg, sig) || strings.Contains(lower, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}
