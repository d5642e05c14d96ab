package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Store is the key/value contract the service needs from a cache backend:
// single-key reads and writes with a per-write expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Close() error
}

// Noop is a Store that never holds anything. Every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, error) { return "", ErrCacheMiss }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Noop) Close() error { return nil }
