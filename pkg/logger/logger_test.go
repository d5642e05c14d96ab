package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	require.Error(t, err)
}

func TestLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.InfoLevel)

	l.With(String("component", "scanner")).Info("scan done",
		Int("symbols", 2),
		Float64("rsi", 71.5),
		Bool("cached", false),
		Error(errors.New("boom")),
	)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scan done", line["message"])
	assert.Equal(t, "scanner", line["component"])
	assert.EqualValues(t, 2, line["symbols"])
	assert.EqualValues(t, 71.5, line["rsi"])
	assert.Equal(t, false, line["cached"])
	assert.Equal(t, "boom", line["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)

	l.Info("hidden")
	l.Debug("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCollector_AggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	l := Nop()
	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "rsiscan.logs",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		l.Error("fetch failed", String("symbol", "BTCUSDT"))
	}
	l.Error("fetch failed", String("symbol", "ETHUSDT"))
	l.Warn("not collected")

	require.Equal(t, 2, l.collector.Pending())
	l.RemoveCollector()

	entries := pub.entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "rsiscan.logs", pub.topic)

	counts := map[interface{}]int{}
	for _, e := range entries {
		counts[e.Fields["symbol"]] = e.Count
		assert.Equal(t, "error", e.Level)
	}
	assert.Equal(t, 3, counts["BTCUSDT"])
	assert.Equal(t, 1, counts["ETHUSDT"])
}

func TestCollector_ThresholdFlush(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Publisher:      pub,
	})
	defer c.Close()

	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")

	assert.Equal(t, 0, c.Pending())
	assert.Eventually(t, func() bool { return len(pub.entries()) == 2 }, time.Second, 10*time.Millisecond)
}
