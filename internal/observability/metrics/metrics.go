package metrics

import "github.com/prometheus/client_golang/prometheus"

// PipelineMetrics exposes counters/histograms for the report submission
// pipeline.
type PipelineMetrics struct {
	submissionsTotal *prometheus.CounterVec
	assessmentsTotal *prometheus.CounterVec
	inferenceLatency prometheus.Histogram
	uploadsTotal     *prometheus.CounterVec
}

func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "infrawatch",
			Subsystem: "reports",
			Name:      "submissions_total",
			Help:      "Total report submissions",
		}, []string{"outcome"}),
		assessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "infrawatch",
			Subsystem: "reports",
			Name:      "assessments_total",
			Help:      "Total risk assessments by result classification",
		}, []string{"result"}),
		inferenceLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "infrawatch",
			Subsystem: "reports",
			Name:      "inference_latency_seconds",
			Help:      "Latency of vision inference calls",
			Buckets:   prometheus.DefBuckets,
		}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "infrawatch",
			Subsystem: "reports",
			Name:      "image_uploads_total",
			Help:      "Total report image uploads",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.assessmentsTotal, m.inferenceLatency, m.uploadsTotal)
	return m
}

func (m *PipelineMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) ObserveAssessment(result string) {
	if m == nil {
		return
	}
	m.assessmentsTotal.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) ObserveInferenceLatency(seconds float64) {
	if m == nil {
		return
	}
	m.inferenceLatency.Observe(seconds)
}

func (m *PipelineMetrics) ObserveUpload(status string) {
	if m == nil {
		return
	}
	m.uploadsTotal.WithLabelValues(status).Inc()
}
