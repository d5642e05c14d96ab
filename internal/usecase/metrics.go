package usecase

import drepo "RSIScan/internal/domain/repository"

// Cache lookup results and fetch outcomes reported to Metrics.
const (
	lookupHit     = "hit"
	lookupMiss    = "miss"
	lookupCorrupt = "corrupt"
	lookupError   = "error"

	fetchOK    = "ok"
	fetchEmpty = "empty"
	fetchError = "error"
	fetchPanic = "panic"
)

type nopMetrics struct{}

func (nopMetrics) RecordCacheLookup(string) {}
func (nopMetrics) RecordCacheWriteError()   {}
func (nopMetrics) RecordFetch(string)       {}
func (nopMetrics) RecordResolveError()      {}
func (nopMetrics) RecordScan(int, float64)  {}

func metricsOrNop(m drepo.Metrics) drepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
