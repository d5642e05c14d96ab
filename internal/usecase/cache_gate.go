package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"RSIScan/internal/domain/models"
	drepo "RSIScan/internal/domain/repository"
	"RSIScan/pkg/cache"
	applogger "RSIScan/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a scan result is served from the cache.
const DefaultCacheTTL = 30 * time.Second

const keyPrefix = "rsi"

// CacheKey identifies a scan by the request's shape: the raw symbols
// parameter (or models.AutoSymbols), interval, limit and period. An explicit
// list and the automatic list never share an entry.
func CacheKey(rawSymbols *string, interval string, limit, period int) string {
	spec := models.AutoSymbols
	if rawSymbols != nil {
		spec = *rawSymbols
	}
	return cache.GenerateKeyWithParams(keyPrefix, spec, interval, limit, period)
}

// ComputeFunc produces a fresh result set on a cache miss.
type ComputeFunc func(ctx context.Context) []models.IndicatorResult

// CacheGate serves scan results from a store and computes them on a miss.
// Store failures are logged and counted, never returned.
type CacheGate struct {
	store   cache.Store
	ttl     time.Duration
	group   *singleflight.Group
	logger  *applogger.Logger
	metrics drepo.Metrics
}

// CacheGateOption configures CacheGate.
type CacheGateOption func(*CacheGate)

// WithSingleFlight collapses concurrent misses on the same key into one
// computation.
func WithSingleFlight(enabled bool) CacheGateOption {
	return func(g *CacheGate) {
		if enabled {
			g.group = &singleflight.Group{}
		} else {
			g.group = nil
		}
	}
}

func NewCacheGate(store cache.Store, ttl time.Duration, logger *applogger.Logger, metrics drepo.Metrics, opts ...CacheGateOption) *CacheGate {
	if store == nil {
		store = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	g := &CacheGate{store: store, ttl: ttl, logger: logger, metrics: metricsOrNop(metrics)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TTL returns the write-back expiry.
func (g *CacheGate) TTL() time.Duration {
	return g.ttl
}

// LookupOrCompute returns the cached results for key when present and
// decodable, otherwise computes them and writes them back. The computation
// runs to completion even if ctx is cancelled.
func (g *CacheGate) LookupOrCompute(ctx context.Context, key string, compute ComputeFunc) []models.IndicatorResult {
	if g.group == nil {
		return g.lookupOrCompute(ctx, key, compute)
	}
	v, _, _ := g.group.Do(key, func() (interface{}, error) {
		return g.lookupOrCompute(ctx, key, compute), nil
	})
	return v.([]models.IndicatorResult)
}

func (g *CacheGate) lookupOrCompute(ctx context.Context, key string, compute ComputeFunc) []models.IndicatorResult {
	if cached, ok := g.lookup(ctx, key); ok {
		return cached
	}

	// results are shared through the store, so the caller's cancellation stops here
	detached := context.WithoutCancel(ctx)
	fresh := compute(detached)
	g.writeBack(detached, key, fresh)
	return fresh
}

func (g *CacheGate) lookup(ctx context.Context, key string) ([]models.IndicatorResult, bool) {
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			g.metrics.RecordCacheLookup(lookupMiss)
			return nil, false
		}
		g.metrics.RecordCacheLookup(lookupError)
		g.logger.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}

	var results []models.IndicatorResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		g.metrics.RecordCacheLookup(lookupCorrupt)
		g.logger.Warn("cache entry undecodable", applogger.String("key", key), applogger.Error(err))
		return nil, false
	}

	g.metrics.RecordCacheLookup(lookupHit)
	return results, true
}

func (g *CacheGate) writeBack(ctx context.Context, key string, results []models.IndicatorResult) {
	payload, err := json.Marshal(results)
	if err != nil {
		g.metrics.RecordCacheWriteError()
		g.logger.Error("cache encode failed", applogger.String("key", key), applogger.Error(err))
		return
	}
	if err := g.store.Set(ctx, key, string(payload), g.ttl); err != nil {
		g.metrics.RecordCacheWriteError()
		g.logger.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}
