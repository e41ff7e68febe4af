package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	jobsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brief_jobs_processed_total",
			Help: "Total number of brief jobs processed, labeled by terminal status.",
		},
		[]string{"status"}, // 'completed', 'failed'
	)

	jobsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brief_jobs_submitted_total",
			Help: "Total number of jobs accepted at the submission endpoint.",
		},
	)

	extractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "document_extraction_failures_total",
			Help: "Per-file extraction failures, labeled by resolved format.",
		},
		[]string{"format"},
	)

	generationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_call_duration_seconds",
			Help:    "Generation service call latency distribution.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30, 60},
		},
		[]string{"model", "success"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			jobsProcessedTotal, jobsSubmittedTotal,
			extractionFailuresTotal, generationLatency,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncJobProcessed(status string) {
	jobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func IncJobSubmitted() {
	jobsSubmittedTotal.Inc()
}

func IncExtractionFailure(format string) {
	extractionFailuresTotal.WithLabelValues(norm(format)).Inc()
}

func ObserveGeneration(model string, d time.Duration, success bool) {
	generationLatency.WithLabelValues(norm(model), strconv.FormatBool(success)).Observe(d.Seconds())
}
