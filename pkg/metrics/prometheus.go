package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheLookups     *prometheus.CounterVec
	cacheWriteErrors prometheus.Counter
	fetches          *prometheus.CounterVec
	resolveErrors    prometheus.Counter
	scanDuration     prometheus.Histogram
	scanSymbols      prometheus.Histogram
}

// New creates a recorder registered on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsiscan_cache_lookups_total",
				Help: "RSI cache lookups by result (hit, miss, corrupt, error)",
			},
			[]string{"result"},
		),
		cacheWriteErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "rsiscan_cache_write_errors_total",
				Help: "Failed RSI cache write-backs",
			},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rsiscan_symbol_fetches_total",
				Help: "Per-symbol kline fetches by outcome",
			},
			[]string{"outcome"},
		),
		resolveErrors: f.NewCounter(
			prometheus.CounterOpts{
				Name: "rsiscan_symbol_resolve_errors_total",
				Help: "Top-volume symbol lookups that failed and resolved to an empty list",
			},
		),
		scanDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rsiscan_scan_duration_seconds",
				Help:    "Duration of an uncached RSI scan",
				Buckets: prometheus.DefBuckets,
			},
		),
		scanSymbols: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rsiscan_scan_symbols",
				Help:    "Number of symbols per uncached RSI scan",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
			},
		),
	}
}

// RecordCacheLookup counts a cache lookup outcome.
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWriteError counts a swallowed write-back failure.
func (r *Recorder) RecordCacheWriteError() {
	r.cacheWriteErrors.Inc()
}

// RecordFetch counts a per-symbol fetch outcome.
func (r *Recorder) RecordFetch(outcome string) {
	r.fetches.WithLabelValues(outcome).Inc()
}

// RecordResolveError counts a failed top-volume lookup.
func (r *Recorder) RecordResolveError() {
	r.resolveErrors.Inc()
}

// RecordScan observes one fan-out.
func (r *Recorder) RecordScan(symbols int, seconds float64) {
	r.scanSymbols.Observe(float64(symbols))
	r.scanDuration.Observe(seconds)
}
