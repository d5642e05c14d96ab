package di

import (
	"fmt"

	"RSIScan/internal/domain/repository"
	"RSIScan/internal/handler/api"
	"RSIScan/internal/service/binance"
	"RSIScan/internal/service/ratelimit"
	"RSIScan/internal/usecase"
	"RSIScan/pkg/cache"
	"RSIScan/pkg/config"
	xhttp "RSIScan/pkg/http"
	"RSIScan/pkg/http/middleware"
	pkgkafka "RSIScan/pkg/kafka"
	applogger "RSIScan/pkg/logger"
	"RSIScan/pkg/metrics"
	"RSIScan/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger creates the application logger. Error logs are aggregated and
// shipped to Kafka when the collector is enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, func(), error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.FlushInterval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Log.Collector.Topic,
			Publisher:      producer,
		})
	}

	return l, l.RemoveCollector, nil
}

// ProvideRegistry returns the registry metrics are registered on and served from.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCacheStore creates the result cache for cfg.Cache.Backend. An
// unreachable Redis degrades to the in-memory store.
func ProvideCacheStore(cfg *config.Config, l *applogger.Logger) (cache.Store, func(), error) {
	memory := func() cache.Store {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.Memory.MaxSize),
			cache.WithMemoryCleanup(cfg.Cache.Memory.CleanupInterval),
		)
	}

	var store cache.Store
	switch cfg.Cache.Backend {
	case config.CacheBackendNone:
		store = cache.Noop{}
	case config.CacheBackendMemory:
		store = memory()
	case config.CacheBackendRedis, config.CacheBackendLayered:
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.Redis.Addr),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.DialTimeout),
			cache.WithRedisDialTimeout(cfg.Cache.Redis.DialTimeout),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
		if err != nil {
			l.Warn("redis unavailable, using in-memory cache",
				applogger.String("addr", cfg.Cache.Redis.Addr),
				applogger.Error(err),
			)
			store = memory()
			break
		}
		if cfg.Cache.Backend == config.CacheBackendLayered {
			store = cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.Memory.MaxSize))
		} else {
			store = rc
		}
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	return store, func() {
		if err := store.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}, nil
}

// ProvideBinanceClient creates the Binance REST client.
func ProvideBinanceClient(cfg *config.Config, l *applogger.Logger) *binance.Client {
	return binance.NewClient(
		binance.WithBaseURL(cfg.Binance.BaseURL),
		binance.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(cfg.Binance.Timeout))),
		binance.WithRateLimit(cfg.Binance.RateLimit, cfg.Binance.RateBurst),
		binance.WithQuoteAsset(cfg.Binance.QuoteAsset),
		binance.WithExclude(cfg.Binance.Exclude...),
		binance.WithLogger(l),
	)
}

// ProvideKlineSource exposes the Binance client as a kline source.
func ProvideKlineSource(c *binance.Client) repository.KlineSource {
	return c
}

// ProvideSymbolRanker exposes the Binance client as a symbol ranker.
func ProvideSymbolRanker(c *binance.Client) repository.SymbolRanker {
	return c
}

// ProvideSymbolResolver creates the symbol resolver.
func ProvideSymbolResolver(cfg *config.Config, ranker repository.SymbolRanker, l *applogger.Logger, m repository.Metrics) *usecase.SymbolResolver {
	return usecase.NewSymbolResolver(ranker, cfg.RSI.TopK, l, m)
}

// ProvideRSIScanner creates the fan-out scanner.
func ProvideRSIScanner(cfg *config.Config, source repository.KlineSource, l *applogger.Logger, m repository.Metrics) *usecase.RSIScanner {
	return usecase.NewRSIScanner(source, cfg.RSI.FetchTimeout, l, m)
}

// ProvideCacheGate creates the cache gate over store.
func ProvideCacheGate(cfg *config.Config, store cache.Store, l *applogger.Logger, m repository.Metrics) *usecase.CacheGate {
	return usecase.NewCacheGate(store, cfg.Cache.TTL, l, m, usecase.WithSingleFlight(cfg.RSI.SingleFlight))
}

// ProvideHTTPHandler creates the RSI route handler.
func ProvideHTTPHandler(l *applogger.Logger, svc *usecase.RSIService) xhttp.Handler {
	return api.NewRSIEchoHandler(l, svc)
}

// ProvideRateLimiter creates the per-IP limiter, or nil when disabled.
func ProvideRateLimiter(cfg *config.Config) middleware.Allower {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Burst, cfg.RateLimit.PerSecond)
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(
	cfg *config.Config,
	handler xhttp.Handler,
	limiter middleware.Allower,
	reg *prometheus.Registry,
	l *applogger.Logger,
) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithLogger(l),
		xhttp.WithRateLimiter(limiter),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithRegistry(reg, reg))
	} else {
		// /metrics serves an empty registry
		throwaway := prometheus.NewRegistry()
		opts = append(opts, xhttp.WithRegistry(throwaway, throwaway))
	}
	return xhttp.NewServer(handler, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, l *applogger.Logger) *server.App {
	return server.New(cfg, srv, l)
}
