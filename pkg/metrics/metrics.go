// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration on the local API.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsight_api_request_duration_seconds",
			Help:    "Local API request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests on the local API.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_api_requests_total",
			Help: "Total local API requests",
		},
		[]string{"method", "path", "status"},
	)

	// AnalysisDuration tracks round trips to the analysis endpoint.
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finsight_analysis_duration_seconds",
			Help:    "Analysis request duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"status"},
	)

	// IngestEventsTotal counts decoded ingestion stream events.
	IngestEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_ingest_events_total",
			Help: "Decoded ingestion stream events",
		},
		[]string{"type"},
	)

	// IngestLinesSkipped counts stream lines that failed to decode.
	IngestLinesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finsight_ingest_lines_skipped_total",
			Help: "Ingestion stream lines skipped because they could not be decoded",
		},
	)

	// IngestOutcomes counts finished ingestion jobs by terminal state.
	IngestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_ingest_outcomes_total",
			Help: "Finished ingestion jobs by terminal state",
		},
		[]string{"state"},
	)

	// IngestActive tracks ingestion streams currently open.
	IngestActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finsight_ingest_streams_active",
			Help: "Number of open ingestion streams",
		},
	)

	// SessionsTotal tracks sessions created.
	SessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finsight_sessions_total",
			Help: "Total chat sessions created",
		},
	)

	// MessagesTotal tracks messages appended to sessions.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_messages_total",
			Help: "Total messages appended",
		},
		[]string{"role"},
	)

	// StoreSaves tracks session list writes by backend and result.
	StoreSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finsight_store_saves_total",
			Help: "Session list saves",
		},
		[]string{"backend", "result"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAnalysis records metrics for one analysis round trip.
func RecordAnalysis(status string, duration float64) {
	AnalysisDuration.WithLabelValues(status).Observe(duration)
}

// RecordStoreSave records the result of a session list save.
func RecordStoreSave(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreSaves.WithLabelValues(backend, result).Inc()
}
