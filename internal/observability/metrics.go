// Package observability holds the Prometheus instrumentation for the
// analysis engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_submissions_total",
		Help: "Total number of accepted submissions, labeled by terminal status.",
	}, []string{"status"})

	ActiveAnalyses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prism_active_analyses",
		Help: "Number of analyses currently in flight.",
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prism_analysis_seconds",
		Help:    "End-to-end time spent on one analysis.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	PluginRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_plugin_runs_total",
		Help: "Total number of plugin executions, labeled by plugin and outcome.",
	}, []string{"plugin", "outcome"})

	PluginDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prism_plugin_seconds",
		Help:    "Time spent running a single analyzer plugin.",
		Buckets: prometheus.DefBuckets,
	}, []string{"plugin"})

	IssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prism_issues_total",
		Help: "Total number of issues reported, labeled by severity and category.",
	}, []string{"severity", "category"})
)

// Plugin run outcomes recorded on PluginRunsTotal.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFault   = "fault"
)
