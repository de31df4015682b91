package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventld"

// Outcome labels for synthesis attempts.
const (
	OutcomeOK      = "ok"
	OutcomeAborted = "aborted"
	OutcomeError   = "error"
)

// Recorder owns the synthesis collectors. A nil *Recorder is a no-op.
type Recorder struct {
	synthesis     *prometheus.CounterVec
	duration      prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	droppedFields *prometheus.CounterVec
	droppedTiers  prometheus.Counter
	cacheEntries  prometheus.Gauge
}

// New builds the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered, which suits tests.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		synthesis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_total",
			Help:      "Structured data synthesis attempts by outcome and error code",
		}, []string{"outcome", "code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synthesis_duration_seconds",
			Help:      "Time spent building a document on a cache miss",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Locale cache lookups by result",
		}, []string{"result"}),
		droppedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_fields_total",
			Help:      "Optional fields omitted after failing validation, by reason",
		}, []string{"reason"}),
		droppedTiers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_tiers_total",
			Help:      "Ticket tiers omitted from offers",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Documents currently held in the locale cache",
		}),
	}
	if reg == nil {
		return r, nil
	}
	for _, collector := range []prometheus.Collector{
		r.synthesis, r.duration, r.cacheLookups, r.droppedFields, r.droppedTiers, r.cacheEntries,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveSynthesis records one build attempt.
func (r *Recorder) ObserveSynthesis(outcome, code string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.synthesis.WithLabelValues(outcome, code).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// DroppedField records an optional field omitted for reason.
func (r *Recorder) DroppedField(reason string) {
	if r == nil {
		return
	}
	r.droppedFields.WithLabelValues(reason).Inc()
}

// DroppedTiers records n ticket tiers omitted from offers.
func (r *Recorder) DroppedTiers(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.droppedTiers.Add(float64(n))
}

// CacheEntries sets the current cache size.
func (r *Recorder) CacheEntries(n int) {
	if r == nil {
		return
	}
	r.cacheEntries.Set(float64(n))
}
