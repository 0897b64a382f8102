package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records the outcome of picture ingestion runs.
type IngestMetrics struct {
	duration *prometheus.HistogramVec
	success  prometheus.Counter
	failure  *prometheus.CounterVec
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "picture_ingest_duration_seconds",
		Help:    "Duration of picture ingestion runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source_format"})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "picture_ingest_success_total",
		Help: "Successful picture ingestions.",
	})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "picture_ingest_failure_total",
		Help: "Failed picture ingestions by stage.",
	}, []string{"stage"})
	reg.MustRegister(duration, success, failure)
	return &IngestMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records an ingestion duration for the given source format.
func (m *IngestMetrics) ObserveDuration(sourceFormat string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(sourceFormat)).Observe(duration.Seconds())
}

// IncSuccess increments the successful-ingest counter.
func (m *IngestMetrics) IncSuccess() {
	if m == nil || m.success == nil {
		return
	}
	m.success.Inc()
}

// IncFailure increments the failure counter for the named pipeline stage.
func (m *IngestMetrics) IncFailure(stage string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(stage)).Inc()
}

// SweepMetrics records orphan-file sweep outcomes.
type SweepMetrics struct {
	removed prometheus.Counter
	failed  prometheus.Counter
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	removed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orphan_files_removed_total",
		Help: "Unreferenced picture files removed by the sweeper.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orphan_files_failed_total",
		Help: "Unreferenced picture files the sweeper could not remove.",
	})
	reg.MustRegister(removed, failed)
	return &SweepMetrics{removed: removed, failed: failed}
}

// IncRemoved increments the removed-orphans counter.
func (m *SweepMetrics) IncRemoved() {
	if m == nil || m.removed == nil {
		return
	}
	m.removed.Inc()
}

// IncFailed increments the failed-removal counter.
func (m *SweepMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
