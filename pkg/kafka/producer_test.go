package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	applogger "RSIScan/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(WithRegisterer(prometheus.NewRegistry()))
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithRegisterer(prometheus.NewRegistry()))
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy", prometheus.NewRegistry())
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "t", []byte("k"), "raw"))
	require.NoError(t, p.Publish(ctx, "t", nil, []byte("bytes")))
	require.NoError(t, p.PublishMessage(ctx, "t", map[string]int{"count": 2}))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "raw", string(w.msgs[0].Value))
	assert.Equal(t, []byte("k"), w.msgs[0].Key)
	assert.Equal(t, "bytes", string(w.msgs[1].Value))
	assert.JSONEq(t, `{"count":2}`, string(w.msgs[2].Value))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.metrics.msgsTotal.WithLabelValues("t", "snappy", "ok")))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, "gzip", prometheus.NewRegistry())

	err := p.Publish(context.Background(), "t", nil, "x")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.errsTotal.WithLabelValues("t")))

	_, err = encode(func() {})
	assert.Error(t, err)
}

func TestProducer_ShipsCollectedLogs(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip", prometheus.NewRegistry())

	l := applogger.Nop()
	l.AddCollector(&applogger.CollectionConfig{Topic: "rsiscan.logs", Publisher: p})
	l.Error("cache write failed", applogger.String("key", "rsi:AUTO_TOP200:1d:500:14"))
	l.Error("cache write failed", applogger.String("key", "rsi:AUTO_TOP200:1d:500:14"))
	l.RemoveCollector()

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "rsiscan.logs", w.msgs[0].Topic)
	assert.Contains(t, string(w.msgs[0].Value), `"count":2`)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
