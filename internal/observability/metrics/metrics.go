package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeOK          = "ok"
	OutcomeOutOfWindow = "out_of_window"
	OutcomeUnavailable = "unavailable"

	CacheHit  = "hit"
	CacheMiss = "miss"
)

// AvailabilityMetrics exposes counters/histograms for the availability façade.
type AvailabilityMetrics struct {
	queriesTotal          *prometheus.CounterVec
	slotsReturned         prometheus.Histogram
	conflictFilteredTotal prometheus.Counter
	cacheTotal            *prometheus.CounterVec
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khidma",
			Subsystem: "availability",
			Name:      "queries_total",
			Help:      "Total availability queries by outcome",
		}, []string{"outcome"}),
		slotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "khidma",
			Subsystem: "availability",
			Name:      "slots_returned",
			Help:      "Bookable slots returned per successful query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		conflictFilteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "khidma",
			Subsystem: "availability",
			Name:      "conflict_filtered_total",
			Help:      "Candidate slots removed by booking conflicts",
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "khidma",
			Subsystem: "availability",
			Name:      "cache_total",
			Help:      "Slot cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.queriesTotal, m.slotsReturned, m.conflictFilteredTotal, m.cacheTotal)
	return m
}

func (m *AvailabilityMetrics) ObserveQuery(outcome string, slots int) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.slotsReturned.Observe(float64(slots))
	}
}

func (m *AvailabilityMetrics) ObserveConflictFiltered(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.conflictFilteredTotal.Add(float64(n))
}

func (m *AvailabilityMetrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}
