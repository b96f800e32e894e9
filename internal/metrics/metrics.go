// Package metrics exposes Prometheus instrumentation for provider calls,
// category ingestion and refreshes.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest outcomes.
const (
	OutcomeAdded     = "added"
	OutcomeMerged    = "merged"
	OutcomeDuplicate = "duplicate"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_provider_requests_total",
			Help: "Outbound metadata provider requests by endpoint kind and HTTP status",
		},
		[]string{"endpoint", "status"},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_provider_request_duration_seconds",
			Help:    "Latency of metadata provider requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	IngestRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingest_records_total",
			Help: "Provider records processed during ingestion by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	IngestPageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_ingest_page_failures_total",
			Help: "Pages skipped because the provider call failed",
		},
		[]string{"category"},
	)

	CategoryRefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_category_refresh_duration_seconds",
			Help:    "Duration of full category refreshes",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"category", "result"},
	)

	CategoryLastRefresh = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_category_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh per category",
		},
		[]string{"category"},
	)
)

func RecordProviderRequest(endpoint string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	ProviderRequestsTotal.WithLabelValues(endpoint, label).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func RecordIngest(category, outcome string) {
	IngestRecordsTotal.WithLabelValues(category, outcome).Inc()
}

func RecordPageFailure(category string) {
	IngestPageFailuresTotal.WithLabelValues(category).Inc()
}

func RecordRefresh(category string, ok bool, d time.Duration, at time.Time) {
	result := "failed"
	if ok {
		result = "ok"
		CategoryLastRefresh.WithLabelValues(category).Set(float64(at.Unix()))
	}
	CategoryRefreshDuration.WithLabelValues(category, result).Observe(d.Seconds())
}
