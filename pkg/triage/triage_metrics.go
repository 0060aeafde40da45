package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage pipeline.
type Metrics struct {
	WorkflowsTotal   *prometheus.CounterVec
	WorkflowDuration *prometheus.HistogramVec
	StageDuration    *prometheus.HistogramVec
	ActionsTotal     *prometheus.CounterVec
	AnalysisFallback *prometheus.CounterVec
}

// NewMetrics registers and returns pipeline metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WorkflowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triago_workflows_total",
			Help: "Total triage workflows by final status.",
		}, []string{"status"}),
		WorkflowDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triago_workflow_duration_seconds",
			Help:    "Duration of triage workflows in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s .. ~256s
		}, []string{"status"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triago_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"stage"}),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triago_actions_total",
			Help: "Total executed actions by type and status.",
		}, []string{"action", "status"}),
		AnalysisFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triago_analysis_fallbacks_total",
			Help: "Total analysis sub-calls replaced by their fallback payload.",
		}, []string{"subcall"}),
	}

	reg.MustRegister(
		m.WorkflowsTotal,
		m.WorkflowDuration,
		m.StageDuration,
		m.ActionsTotal,
		m.AnalysisFallback,
	)

	return m
}

func (m *Metrics) observeWorkflow(status string, seconds float64) {
	if m == nil {
		return
	}

	m.WorkflowsTotal.WithLabelValues(status).Inc()
	m.WorkflowDuration.WithLabelValues(status).Observe(seconds)
}

func (m *Metrics) observeStage(stage string, seconds float64) {
	if m == nil {
		return
	}

	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) observeAction(action, status string) {
	if m == nil {
		return
	}

	m.ActionsTotal.WithLabelValues(action, status).Inc()
}

func (m *Metrics) observeFallbacks(subcalls []string) {
	if m == nil {
		return
	}

	for _, subcall := range subcalls {
		m.AnalysisFallback.WithLabelValues(subcall).Inc()
	}
}
