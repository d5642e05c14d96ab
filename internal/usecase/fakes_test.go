package usecase

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSource struct {
	mu     sync.Mutex
	series map[string][]float64
	errs   map[string]error
	calls  map[string]int
	// before runs at the start of every Closes call when set.
	before func(ctx context.Context, symbol string) error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		series: map[string][]float64{},
		errs:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeSource) Closes(ctx context.Context, symbol, _ string, _ int) ([]float64, error) {
	f.mu.Lock()
	f.calls[symbol]++
	before := f.before
	f.mu.Unlock()

	if before != nil {
		if err := before(ctx, symbol); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.series[symbol], nil
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeRanker struct {
	symbols []string
	err     error
	gotK    int
}

func (f *fakeRanker) TopSymbols(_ context.Context, k int) ([]string, error) {
	f.gotK = k
	return f.symbols, f.err
}

type recordingMetrics struct {
	mu          sync.Mutex
	lookups     map[string]int
	writeErrors int
	fetches     map[string]int
	resolveErrs int
	scans       int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{lookups: map[string]int{}, fetches: map[string]int{}}
}

func (m *recordingMetrics) RecordCacheLookup(result string) {
	m.mu.Lock()
	m.lookups[result]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordCacheWriteError() {
	m.mu.Lock()
	m.writeErrors++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordFetch(outcome string) {
	m.mu.Lock()
	m.fetches[outcome]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordResolveError() {
	m.mu.Lock()
	m.resolveErrs++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordScan(int, float64) {
	m.mu.Lock()
	m.scans++
	m.mu.Unlock()
}

// failingStore fails every call.
type failingStore struct{ err error }

func (s failingStore) Get(context.Context, string) (string, error) { return "", s.err }
func (s failingStore) Set(context.Context, string, string, time.Duration) error {
	return s.err
}
func (s failingStore) Close() error { return nil }

var errUnavailable = errors.New("connection refused")

// rising returns n strictly increasing closes starting at base.
func rising(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base + float64(i)
	}
	return out
}

// zigzag returns n closes alternating up and down with growing amplitude.
func zigzag(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = base + float64(i)
		} else {
			out[i] = base - float64(i)/2
		}
	}
	return out
}
