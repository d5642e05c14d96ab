package usecase

import (
	"context"
	"time"

	"RSIScan/internal/domain/models"
	applogger "RSIScan/pkg/logger"
)

// RSIService answers RSI scan requests: cache key, cache gate, symbol
// resolution, fan-out, aggregation.
type RSIService struct {
	resolver *SymbolResolver
	scanner  *RSIScanner
	gate     *CacheGate
	logger   *applogger.Logger
}

func NewRSIService(resolver *SymbolResolver, scanner *RSIScanner, gate *CacheGate, logger *applogger.Logger) *RSIService {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &RSIService{resolver: resolver, scanner: scanner, gate: gate, logger: logger}
}

// Scan never fails; per-symbol problems are reported inside the results.
func (s *RSIService) Scan(ctx context.Context, req models.RSIRequest) []models.IndicatorResult {
	key := CacheKey(req.Symbols, req.Interval, req.Limit, req.Period)

	results := s.gate.LookupOrCompute(ctx, key, func(ctx context.Context) []models.IndicatorResult {
		symbols := s.resolver.Resolve(ctx, req.Symbols)
		s.logger.Info("computing rsi",
			applogger.String("key", key),
			applogger.Int("symbols", len(symbols)),
		)
		return aggregate(s.scanner.Scan(ctx, symbols, req.Interval, req.Limit, req.Period))
	})
	return aggregate(results)
}

// CacheTTL is how long a response may be reused by clients.
func (s *RSIService) CacheTTL() time.Duration {
	return s.gate.TTL()
}

// aggregate guarantees a non-nil collection so an empty scan encodes as [].
func aggregate(results []models.IndicatorResult) []models.IndicatorResult {
	if results == nil {
		return []models.IndicatorResult{}
	}
	return results
}
