package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Every key may burst up to capacity
// requests and refills at refillPerSec.
type Limiter struct {
	mu        sync.Mutex
	m         map[string]*entry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// Option configures Limiter.
type Option func(*Limiter)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithIdleTTL sets how long an untouched key is kept before it is pruned.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) { l.idleTTL = d }
}

// New creates a limiter allowing bursts of capacity and refillPerSec sustained.
func New(capacity, refillPerSec float64, opts ...Option) *Limiter {
	l := &Limiter{
		m:       make(map[string]*entry),
		limit:   rate.Limit(refillPerSec),
		burst:   int(capacity),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastPrune = l.now()
	return l
}

// Allow reports whether one request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	e, ok := l.m[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.m[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

func (l *Limiter) pruneLocked(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastPrune) < l.idleTTL {
		return
	}
	for k, e := range l.m {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.m, k)
		}
	}
	l.lastPrune = now
}
