package repository

import "context"

// KlineSource returns closing prices, oldest first.
type KlineSource interface {
	Closes(ctx context.Context, symbol, interval string, limit int) ([]float64, error)
}

// Pacer is implemented by sources that throttle outbound calls. Wait blocks
// until one call may start and returns a context that lets that call proceed
// without queueing again, so a fetch deadline set afterwards covers only the call.
type Pacer interface {
	Wait(ctx context.Context) (context.Context, error)
}

// SymbolRanker returns the top k symbols by traded quote volume.
type SymbolRanker interface {
	TopSymbols(ctx context.Context, k int) ([]string, error)
}

// Metrics receives scan and cache observations.
type Metrics interface {
	RecordCacheLookup(result string)
	RecordCacheWriteError()
	RecordFetch(outcome string)
	RecordResolveError()
	RecordScan(symbols int, seconds float64)
}
