package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"RSIScan/internal/domain/models"
	applogger "RSIScan/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bySymbol(results []models.IndicatorResult) map[string]models.IndicatorResult {
	m := make(map[string]models.IndicatorResult, len(results))
	for _, r := range results {
		m[r.Symbol] = r
	}
	return m
}

func TestRSIScanner_FailureIsolation(t *testing.T) {
	src := newFakeSource()
	symbols := []string{"AUSDT", "BUSDT", "CUSDT", "DUSDT", "EUSDT"}
	for _, s := range symbols {
		src.series[s] = zigzag(30, 100)
	}
	src.errs["CUSDT"] = errors.New("binance /api/v3/klines: status 400")
	m := newRecordingMetrics()

	s := NewRSIScanner(src, time.Second, applogger.Nop(), m)
	results := s.Scan(context.Background(), symbols, "1d", 30, 14)

	require.Len(t, results, len(symbols))
	errorCount := 0
	for _, r := range results {
		if r.Symbol == "CUSDT" {
			errorCount++
			assert.Nil(t, r.Value)
			assert.Equal(t, "error: binance /api/v3/klines: status 400", r.Category)
			continue
		}
		require.NotNil(t, r.Value, r.Symbol)
		assert.Contains(t, []string{"overbought", "oversold", "neutral"}, r.Category)
	}
	assert.Equal(t, 1, errorCount)
	assert.Equal(t, 4, m.fetches[fetchOK])
	assert.Equal(t, 1, m.fetches[fetchError])
	assert.Equal(t, 1, m.scans)
}

func TestRSIScanner_RunsConcurrently(t *testing.T) {
	const n = 8
	src := newFakeSource()
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = string(rune('A'+i)) + "USDT"
		src.series[symbols[i]] = rising(20, 10)
	}

	// every fetch blocks until all of them have started
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()
	src.before = func(ctx context.Context, _ string) error {
		arrived.Done()
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s := NewRSIScanner(src, 2*time.Second, applogger.Nop(), nil)
	results := s.Scan(context.Background(), symbols, "1d", 20, 14)

	require.Len(t, results, n)
	for _, r := range results {
		require.NotNil(t, r.Value, r.Category)
		assert.Equal(t, 100.0, *r.Value)
		assert.Equal(t, "overbought", r.Category)
	}
}

func TestRSIScanner_EmptyAndShortSeries(t *testing.T) {
	src := newFakeSource()
	src.series["EMPTYUSDT"] = []float64{}
	src.series["SHORTUSDT"] = rising(14, 1)
	m := newRecordingMetrics()

	s := NewRSIScanner(src, time.Second, applogger.Nop(), m)
	got := bySymbol(s.Scan(context.Background(), []string{"EMPTYUSDT", "SHORTUSDT"}, "1d", 14, 14))

	assert.Nil(t, got["EMPTYUSDT"].Value)
	assert.Equal(t, "na", got["EMPTYUSDT"].Category)
	assert.Nil(t, got["SHORTUSDT"].Value)
	assert.Equal(t, "na", got["SHORTUSDT"].Category)
	assert.Equal(t, 1, m.fetches[fetchEmpty])
}

func TestRSIScanner_FetchTimeoutIsAFailure(t *testing.T) {
	src := newFakeSource()
	src.series["SLOWUSDT"] = rising(20, 1)
	src.series["FASTUSDT"] = rising(20, 1)
	src.before = func(ctx context.Context, symbol string) error {
		if symbol != "SLOWUSDT" {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}

	s := NewRSIScanner(src, 20*time.Millisecond, applogger.Nop(), nil)
	got := bySymbol(s.Scan(context.Background(), []string{"SLOWUSDT", "FASTUSDT"}, "1d", 20, 14))

	assert.Nil(t, got["SLOWUSDT"].Value)
	assert.Equal(t, "error: "+context.DeadlineExceeded.Error(), got["SLOWUSDT"].Category)
	assert.NotNil(t, got["FASTUSDT"].Value)
}

func TestRSIScanner_RecoversPanics(t *testing.T) {
	src := newFakeSource()
	src.series["OKUSDT"] = rising(20, 1)
	src.before = func(_ context.Context, symbol string) error {
		if symbol == "BADUSDT" {
			panic("index out of range")
		}
		return nil
	}
	m := newRecordingMetrics()

	s := NewRSIScanner(src, time.Second, applogger.Nop(), m)
	got := bySymbol(s.Scan(context.Background(), []string{"BADUSDT", "OKUSDT"}, "1d", 20, 14))

	assert.Equal(t, "error: panic: index out of range", got["BADUSDT"].Category)
	assert.Nil(t, got["BADUSDT"].Value)
	assert.NotNil(t, got["OKUSDT"].Value)
	assert.Equal(t, 1, m.fetches[fetchPanic])
}

func TestRSIScanner_NoSymbols(t *testing.T) {
	s := NewRSIScanner(newFakeSource(), time.Second, applogger.Nop(), nil)
	assert.Empty(t, s.Scan(context.Background(), nil, "1d", 500, 14))
}
