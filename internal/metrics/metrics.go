// Package metrics exposes Prometheus collectors for the launch crawler.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchAttemptsTotal         *prometheus.CounterVec
	rateLimitDelaySeconds      *prometheus.HistogramVec
	recordsExtractedTotal      *prometheus.CounterVec
	tablesSkippedTotal         *prometheus.CounterVec
	validationWarningsTotal    *prometheus.CounterVec
	runsTotal                  *prometheus.CounterVec
	datasetBytes               *prometheus.GaugeVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchcrawler_fetch_attempts_total",
				Help: "Total page fetch attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchcrawler_rate_limit_delay_seconds",
				Help:    "Time fetches spent waiting on the per-host rate limiter.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"host"},
		)

		recordsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchcrawler_records_extracted_total",
				Help: "Total launch records extracted, labeled by target.",
			},
			[]string{"target"},
		)

		tablesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchcrawler_tables_skipped_total",
				Help: "Tables dropped because they only held upcoming or suborbital rows.",
			},
			[]string{"target"},
		)

		validationWarningsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchcrawler_validation_warnings_total",
				Help: "Total validation warnings emitted before persistence, labeled by target.",
			},
			[]string{"target"},
		)

		runsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchcrawler_runs_total",
				Help: "Total target runs, labeled by target and status.",
			},
			[]string{"target", "status"},
		)

		datasetBytes = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "launchcrawler_dataset_bytes",
				Help: "Size of the most recently saved dataset, labeled by dataset name.",
			},
			[]string{"dataset"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveFetchAttempt counts one fetch attempt.
func ObserveFetchAttempt(outcome string) {
	Init()
	fetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimitDelay records how long a fetch waited for a token.
func ObserveRateLimitDelay(host string, delay time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(host).Observe(delay.Seconds())
}

// ObserveExtraction records the result of scraping one target.
func ObserveExtraction(target string, records, skippedTables int) {
	Init()
	recordsExtractedTotal.WithLabelValues(target).Add(float64(records))
	if skippedTables > 0 {
		tablesSkippedTotal.WithLabelValues(target).Add(float64(skippedTables))
	}
}

// ObserveValidationWarnings counts warnings emitted for a target.
func ObserveValidationWarnings(target string, count int) {
	Init()
	if count > 0 {
		validationWarningsTotal.WithLabelValues(target).Add(float64(count))
	}
}

// ObserveRun increments the run counter for the given status.
func ObserveRun(target, status string) {
	Init()
	runsTotal.WithLabelValues(target, status).Inc()
}

// ObserveDatasetSize records the byte size of a saved dataset.
func ObserveDatasetSize(dataset string, size int) {
	Init()
	datasetBytes.WithLabelValues(dataset).Set(float64(size))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
