package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAvailabilityMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAvailabilityMetrics(reg)

	m.ObserveQuery(OutcomeOK, 5)
	m.ObserveQuery(OutcomeOutOfWindow, 0)
	m.ObserveCache(CacheHit)
	m.ObserveCache(CacheMiss)
	m.ObserveConflictFiltered(3)
	m.ObserveConflictFiltered(0)
	m.ObserveConflictFiltered(-1)

	if got := testutil.ToFloat64(m.queriesTotal.WithLabelValues(OutcomeOK)); got != 1 {
		t.Fatalf("queries_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.queriesTotal.WithLabelValues(OutcomeOutOfWindow)); got != 1 {
		t.Fatalf("queries_total{out_of_window} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheTotal.WithLabelValues(CacheHit)); got != 1 {
		t.Fatalf("cache_total{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.conflictFilteredTotal); got != 3 {
		t.Fatalf("conflict_filtered_total = %v, want 3", got)
	}
}

func TestAvailabilityMetricsNilSafe(t *testing.T) {
	var m *AvailabilityMetrics

	m.ObserveQuery(OutcomeOK, 5)
	m.ObserveConflictFiltered(3)
	m.ObserveCache(CacheHit)
}
