package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"RSIScan/internal/domain/models"
	drepo "RSIScan/internal/domain/repository"
	"RSIScan/internal/indicator"
	applogger "RSIScan/pkg/logger"
)

// DefaultFetchTimeout bounds a single kline fetch.
const DefaultFetchTimeout = 10 * time.Second

// RSIScanner fetches closes for many symbols concurrently and reduces each
// series to its latest classified RSI reading.
type RSIScanner struct {
	source       drepo.KlineSource
	fetchTimeout time.Duration
	logger       *applogger.Logger
	metrics      drepo.Metrics
}

func NewRSIScanner(source drepo.KlineSource, fetchTimeout time.Duration, logger *applogger.Logger, metrics drepo.Metrics) *RSIScanner {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &RSIScanner{source: source, fetchTimeout: fetchTimeout, logger: logger, metrics: metricsOrNop(metrics)}
}

// Scan returns exactly one result per input symbol. A failing symbol carries
// an "error: ..." category and never affects the others.
func (s *RSIScanner) Scan(ctx context.Context, symbols []string, interval string, limit, period int) []models.IndicatorResult {
	start := time.Now()
	out := make([]models.IndicatorResult, len(symbols))

	var wg sync.WaitGroup
	wg.Add(len(symbols))
	for i, sym := range symbols {
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = s.scanOne(ctx, sym, interval, limit, period)
		}(i, sym)
	}
	wg.Wait()

	s.metrics.RecordScan(len(symbols), time.Since(start).Seconds())
	s.logger.Debug("rsi scan finished",
		applogger.Int("symbols", len(symbols)),
		applogger.String("interval", interval),
		applogger.Duration("elapsed", time.Since(start)),
	)
	return out
}

func (s *RSIScanner) scanOne(ctx context.Context, symbol, interval string, limit, period int) (res models.IndicatorResult) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.RecordFetch(fetchPanic)
			s.logger.Error("rsi task panicked",
				applogger.String("symbol", symbol),
				applogger.Any("panic", r),
			)
			res = errorResult(symbol, fmt.Errorf("panic: %v", r))
		}
	}()

	if p, ok := s.source.(drepo.Pacer); ok {
		paced, err := p.Wait(ctx)
		if err != nil {
			s.metrics.RecordFetch(fetchError)
			return errorResult(symbol, err)
		}
		ctx = paced
	}

	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	closes, err := s.source.Closes(fctx, symbol, interval, limit)
	if err != nil {
		s.metrics.RecordFetch(fetchError)
		s.logger.Debug("kline fetch failed", applogger.String("symbol", symbol), applogger.Error(err))
		return errorResult(symbol, err)
	}
	if len(closes) == 0 {
		s.metrics.RecordFetch(fetchEmpty)
		return models.IndicatorResult{Symbol: symbol, Category: string(indicator.CategoryNA)}
	}
	s.metrics.RecordFetch(fetchOK)

	last := indicator.Last(indicator.Compute(closes, period))
	res = models.IndicatorResult{Symbol: symbol, Category: string(indicator.Classify(last))}
	if last.Valid {
		v := last.Value
		res.Value = &v
	}
	return res
}

func errorResult(symbol string, err error) models.IndicatorResult {
	return models.IndicatorResult{Symbol: symbol, Category: "error: " + err.Error()}
}
