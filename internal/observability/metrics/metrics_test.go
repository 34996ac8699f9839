package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPipelineMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)
	m.ObserveSubmission("persisted")
	m.ObserveAssessment("genuine")
	m.ObserveInferenceLatency(0.5)
	m.ObserveUpload("ok")
}

func TestPipelineMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)
	m.ObserveSubmission("failed")
}

func TestPipelineMetricsNilSafe(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveSubmission("persisted")
	m.ObserveAssessment("quota")
	m.ObserveInferenceLatency(0.1)
	m.ObserveUpload("error")
}
