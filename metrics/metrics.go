// Package metrics provides Prometheus observability metrics for the call insights pipeline.
// It includes Critical and Important metrics for business and operational visibility.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// CRITICAL METRICS - Business Impact Visibility
// =============================================================================

// KPIThresholdCalls is the call count an agent needs to meet the KPI bar.
var KPIThresholdCalls = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "threshold_calls",
	Help:      "Calls required to meet the performance threshold in the latest run",
})

// KPIUnderperformers tracks leaderboard agents below the threshold.
var KPIUnderperformers = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "underperformers",
	Help:      "Number of ranked agents below the threshold in the latest run",
})

// KPIRankedAgents tracks the leaderboard size.
var KPIRankedAgents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpi",
	Name:      "ranked_agents",
	Help:      "Number of agents on the leaderboard in the latest run",
})

// PipelineFilteredRecords tracks how many records survived the filters.
var PipelineFilteredRecords = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "pipeline",
	Name:      "filtered_records",
	Help:      "Records remaining after filters in the latest run",
})

// =============================================================================
// IMPORTANT METRICS - Operational Health
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserRecordsTotal tracks total records successfully parsed.
var ParserRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "records_total",
	Help:      "Total call records successfully normalized",
})

// ReasonSynonymsApplied counts reasons rewritten to a canonical label.
var ReasonSynonymsApplied = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "reason_synonyms_applied_total",
	Help:      "Reason values rewritten through the synonym map",
})

// ParserDurationSeconds tracks time to parse input files.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to load and normalize an input file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// PipelineDurationSeconds tracks time to build one dashboard.
var PipelineDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "pipeline",
	Name:      "duration_seconds",
	Help:      "Time taken to filter and aggregate one dashboard",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// PipelineRunsTotal counts dashboard builds.
var PipelineRunsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "pipeline",
	Name:      "runs_total",
	Help:      "Dashboards built since start",
})

// HTTPRequestsTotal counts API requests by route and status.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "API requests by route and status code",
}, []string{"route", "code"})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetRunGauges resets the per-run gauges before a new dashboard is built.
func ResetRunGauges() {
	KPIThresholdCalls.Set(0)
	KPIUnderperformers.Set(0)
	KPIRankedAgents.Set(0)
	PipelineFilteredRecords.Set(0)
}
