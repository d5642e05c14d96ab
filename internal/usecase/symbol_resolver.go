package usecase

import (
	"context"
	"strings"

	drepo "RSIScan/internal/domain/repository"
	applogger "RSIScan/pkg/logger"
)

// DefaultTopK is how many symbols are scanned when the caller names none.
const DefaultTopK = 200

// SymbolResolver turns the optional symbols parameter into the list to scan.
type SymbolResolver struct {
	ranker  drepo.SymbolRanker
	topK    int
	logger  *applogger.Logger
	metrics drepo.Metrics
}

func NewSymbolResolver(ranker drepo.SymbolRanker, topK int, logger *applogger.Logger, metrics drepo.Metrics) *SymbolResolver {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SymbolResolver{ranker: ranker, topK: topK, logger: logger, metrics: metricsOrNop(metrics)}
}

// Resolve splits an explicit list on commas and trims each token; empty
// tokens are kept. Without an explicit list it asks the ranker for the top
// symbols and degrades to an empty list when the ranker fails.
func (r *SymbolResolver) Resolve(ctx context.Context, explicit *string) []string {
	if explicit != nil {
		parts := strings.Split(*explicit, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	symbols, err := r.ranker.TopSymbols(ctx, r.topK)
	if err != nil {
		r.metrics.RecordResolveError()
		r.logger.Warn("top symbols unavailable, scanning nothing",
			applogger.Int("top_k", r.topK),
			applogger.Error(err),
		)
		return []string{}
	}
	return symbols
}
