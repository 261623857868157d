package avfacepay

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSubmissionSuccess)

	if got := m.Value(MetricSubmissionSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSubmissionSuccess)
	m.Inc(MetricSubmissionSuccess)
	m.Inc(MetricSubmissionSuccess)

	if got := m.Value(MetricSubmissionSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricOTPVerifySuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricOTPVerifySuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		3 * time.Millisecond,   // bucket 0
		8 * time.Millisecond,   // bucket 1
		20 * time.Millisecond,  // bucket 2
		40 * time.Millisecond,  // bucket 3
		90 * time.Millisecond,  // bucket 4
		200 * time.Millisecond, // bucket 5
		400 * time.Millisecond, // bucket 6
		2 * time.Second,        // bucket 7
	}
	for _, d := range observations {
		m.Observe(MetricSubmitLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricSubmitLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, count := range buckets {
		if count != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, count)
		}
	}
}

func TestMetricsObserveIgnoresCounterIDs(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	m.Observe(MetricSubmissionSuccess, 10*time.Millisecond)

	snap := m.Snapshot()
	for _, count := range snap.Histograms[MetricSubmitLatency] {
		if count != 0 {
			t.Fatal("counter-only metric leaked into the latency histogram")
		}
	}
}

func TestMetricsSnapshotIsolated(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricFallbackTriggered)

	snap := m.Snapshot()
	snap.Counters[MetricFallbackTriggered] = 999

	if got := m.Value(MetricFallbackTriggered); got != 1 {
		t.Fatalf("snapshot mutation leaked into live metrics: %d", got)
	}
}

func TestMetricsHistogramDisabledByDefault(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricSubmitLatency, 10*time.Millisecond)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricSubmitLatency]; ok {
		t.Fatal("histograms should be absent when not enabled")
	}
}
