package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
// L1 is filled on write only, so an L1 entry never outlives the expiry it was
// written with.
type LayeredCache struct {
	memCache *MemoryCache
	remote   Store
}

// NewLayeredCache creates a layered cache in front of remote.
func NewLayeredCache(remote Store, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache: NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize)),
		remote:   remote,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	// Write-through: remote first, then memory
	if err := lc.remote.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if v, err := lc.memCache.Get(ctx, key); err == nil {
		return v, nil
	}
	return lc.remote.Get(ctx, key)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	return errors.Join(lc.memCache.Close(), lc.remote.Close())
}
