package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestIngestMetricsExportCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestMetrics(reg)

	m.ObserveDuration("heic", 250*time.Millisecond)
	m.IncSuccess()
	m.IncFailure("derive")
	m.IncFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := counterValue(mfs, "picture_ingest_success_total", "", ""); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := counterValue(mfs, "picture_ingest_failure_total", "stage", "derive"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := counterValue(mfs, "picture_ingest_failure_total", "stage", "unknown"); err != nil {
		t.Fatalf("fetch normalized failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected normalized failure=1, got %f", got)
	}

	if got, err := histogramSum(mfs, "picture_ingest_duration_seconds", "source_format", "heic"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewIngestMetrics(nil)
	m.IncSuccess()
	m.IncFailure("derive")
	m.ObserveDuration("jpeg", time.Second)

	sweep := NewSweepMetrics(nil)
	sweep.IncRemoved()
	sweep.IncFailed()
}

func TestSweepMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSweepMetrics(reg)
	m.IncRemoved()
	m.IncRemoved()
	m.IncFailed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := counterValue(mfs, "orphan_files_removed_total", "", ""); err != nil {
		t.Fatalf("fetch removed: %v", err)
	} else if got != 2 {
		t.Fatalf("expected removed=2, got %f", got)
	}
	if got, err := counterValue(mfs, "orphan_files_failed_total", "", ""); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if label == "" || matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func histogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
