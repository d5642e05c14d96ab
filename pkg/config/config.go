package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"RSIScan/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendRedis   = "redis"
	CacheBackendMemory  = "memory"
	CacheBackendLayered = "layered"
	CacheBackendNone    = "none"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"5s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled       bool          `yaml:"enabled"`
			Topic         string        `yaml:"topic" default:"rsiscan.logs"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"30s"`
			Threshold     int           `yaml:"threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool `yaml:"enabled" default:"true"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled   bool    `yaml:"enabled"`
		Burst     float64 `yaml:"burst" default:"20"`
		PerSecond float64 `yaml:"per_second" default:"5"`
	} `yaml:"rate_limit"`
	Cache struct {
		Backend string        `yaml:"backend" default:"redis"`
		TTL     time.Duration `yaml:"ttl" default:"30s"`
		Redis   struct {
			Addr         string        `yaml:"addr" default:"localhost:6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix"`
			PoolSize     int           `yaml:"pool_size" default:"20"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"3s"`
		} `yaml:"redis"`
		Memory struct {
			MaxSize         int           `yaml:"max_size" default:"1000"`
			CleanupInterval time.Duration `yaml:"cleanup_interval" default:"1m"`
		} `yaml:"memory"`
	} `yaml:"cache"`
	Binance struct {
		BaseURL    string        `yaml:"base_url" default:"https://api.binance.com"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		RateLimit  float64       `yaml:"rate_limit" default:"20"`
		RateBurst  int           `yaml:"rate_burst" default:"40"`
		QuoteAsset string        `yaml:"quote_asset" default:"USDT"`
		Exclude    []string      `yaml:"exclude" default:"[\"DARUSDT\",\"USDCUSDT\",\"FDUSDUSDT\"]"`
	} `yaml:"binance"`
	RSI struct {
		TopK         int           `yaml:"top_k" default:"200"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" default:"10s"`
		SingleFlight bool          `yaml:"single_flight"`
	} `yaml:"rsi"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
}

// Default returns a configuration holding only default values.
func Default() *Config {
	var c Config
	// tags are static; an error here is a programming mistake
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. Keys missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := get("BINANCE_BASE_URL"); ok {
		c.Binance.BaseURL = v
	}
	if v, ok := get("CACHE_TTL"); ok {
		ttl, err := util.ParseSecondsOrDuration(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL: %w", err)
		}
		c.Cache.TTL = ttl
	}
	if v, ok := get("HTTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := get("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = util.SplitAndTrim(v, ",")
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory, CacheBackendLayered, CacheBackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of redis, memory, layered, none, got '%s'", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Binance.BaseURL == "" {
		return fmt.Errorf("binance.base_url is required")
	}
	if c.Binance.RateLimit <= 0 || c.Binance.RateBurst <= 0 {
		return fmt.Errorf("binance.rate_limit and binance.rate_burst must be positive")
	}
	if c.RSI.TopK <= 0 {
		return fmt.Errorf("rsi.top_k must be positive")
	}
	if c.RSI.FetchTimeout <= 0 {
		return fmt.Errorf("rsi.fetch_timeout must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Burst < 1 || c.RateLimit.PerSecond <= 0) {
		return fmt.Errorf("rate_limit.burst must be >= 1 and rate_limit.per_second positive")
	}
	if c.Log.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("log.collector requires kafka.brokers")
	}
	return nil
}
