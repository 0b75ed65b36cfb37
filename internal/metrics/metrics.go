// Package metrics holds the prometheus collectors of the site server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "site"

var (
	// Registry is served on /metrics.
	Registry = prometheus.NewRegistry()

	ContentReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_reads_total",
		Help:      "Content document reads by the layer that answered.",
	}, []string{"source"})

	ContentWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_writes_total",
		Help:      "Content document writes by result.",
	}, []string{"result"})

	GenerationAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_attempts_total",
		Help:      "Text generation attempts by model and outcome.",
	}, []string{"model", "outcome"})

	AnalysisResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_responses_total",
		Help:      "Analysis responses by source.",
	}, []string{"source"})

	CommitResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_commits_total",
		Help:      "Editing session commits by status.",
	}, []string{"status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ContentReads,
		ContentWrites,
		GenerationAttempts,
		AnalysisResponses,
		CommitResults,
		RequestDuration,
	)
}
