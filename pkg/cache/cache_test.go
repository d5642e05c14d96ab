package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestMemoryCache_RoundTripAndExpiry(t *testing.T) {
	t.Parallel()

	clock := newClock()
	mc := NewMemoryCache(WithMemoryClock(clock.Now))
	defer func() { _ = mc.Close() }()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "rsi:BTCUSDT:1d:500:14", `[{"symbol":"BTCUSDT"}]`, 30*time.Second))

	got, err := mc.Get(ctx, "rsi:BTCUSDT:1d:500:14")
	require.NoError(t, err)
	assert.Equal(t, `[{"symbol":"BTCUSDT"}]`, got)

	clock.Advance(29 * time.Second)
	_, err = mc.Get(ctx, "rsi:BTCUSDT:1d:500:14")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = mc.Get(ctx, "rsi:BTCUSDT:1d:500:14")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_Miss(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache()
	defer func() { _ = mc.Close() }()

	_, err := mc.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_NonPositiveTTLStoresNothing(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache()
	defer func() { _ = mc.Close() }()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", 0))
	require.NoError(t, mc.Set(ctx, "k", "v", -time.Second))
	_, err := mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	clock := newClock()
	mc := NewMemoryCache(WithMemoryMaxSize(2), WithMemoryClock(clock.Now))
	defer func() { _ = mc.Close() }()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	clock.Advance(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	clock.Advance(time.Millisecond)
	_, err := mc.Get(ctx, "a") // a is now the most recent
	require.NoError(t, err)
	clock.Advance(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = mc.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache(WithMemoryMaxSize(1))
	defer func() { _ = mc.Close() }()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "a", "2", time.Minute))
	got, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache()
	assert.NoError(t, mc.Close())
	assert.NoError(t, mc.Close())
}

func TestRedisCache_Get(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	rc := NewRedisCacheFromClient(rdb, "")
	ctx := context.Background()

	mock.ExpectGet("hit").SetVal("payload")
	mock.ExpectGet("miss").RedisNil()
	mock.ExpectGet("broken").SetErr(errors.New("connection refused"))

	v, err := rc.Get(ctx, "hit")
	require.NoError(t, err)
	assert.Equal(t, "payload", v)

	_, err = rc.Get(ctx, "miss")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = rc.Get(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetWithPrefix(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()
	rc := NewRedisCacheFromClient(rdb, "rsiscan")

	mock.ExpectSet("rsiscan:rsi:AUTO_TOP200:1d:500:14", "[]", 30*time.Second).SetVal("OK")
	mock.ExpectGet("rsiscan:rsi:AUTO_TOP200:1d:500:14").SetVal("[]")

	ctx := context.Background()
	require.NoError(t, rc.Set(ctx, "rsi:AUTO_TOP200:1d:500:14", "[]", 30*time.Second))
	v, err := rc.Get(ctx, "rsi:AUTO_TOP200:1d:500:14")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayeredCache_WriteThroughAndL1Hit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	lc := NewLayeredCache(NewRedisCacheFromClient(rdb, ""))
	defer func() { _ = lc.Close() }()
	ctx := context.Background()

	mock.ExpectSet("k", "v", time.Minute).SetVal("OK")
	require.NoError(t, lc.Set(ctx, "k", "v", time.Minute))

	// served from L1; no Redis GET expected
	v, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	mock.ExpectGet("other").SetVal("remote")
	v, err = lc.Get(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "remote", v)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayeredCache_RemoteSetErrorSkipsL1(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	lc := NewLayeredCache(NewRedisCacheFromClient(rdb, ""))
	defer func() { _ = lc.Close() }()
	ctx := context.Background()

	mock.ExpectSet("k", "v", time.Minute).SetErr(errors.New("readonly"))
	require.Error(t, lc.Set(ctx, "k", "v", time.Minute))

	mock.ExpectGet("k").RedisNil()
	_, err := lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var s Store = Noop{}
	require.NoError(t, s.Set(context.Background(), "k", "v", time.Minute))
	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rsi:BTCUSDT,ETHUSDT:1d:20:14", GenerateKeyWithParams("rsi", "BTCUSDT,ETHUSDT", "1d", 20, 14))
	assert.Equal(t, "rsi", GenerateKeyWithParams("rsi"))
}
