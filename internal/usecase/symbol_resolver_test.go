package usecase

import (
	"context"
	"errors"
	"testing"

	applogger "RSIScan/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSymbolResolver_Explicit(t *testing.T) {
	ranker := &fakeRanker{symbols: []string{"SHOULDNOTAPPEAR"}}
	r := NewSymbolResolver(ranker, 0, applogger.Nop(), nil)

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "single", in: "BTCUSDT", want: []string{"BTCUSDT"}},
		{name: "trims tokens", in: " BTCUSDT , ETHUSDT", want: []string{"BTCUSDT", "ETHUSDT"}},
		{name: "keeps empty tokens", in: "BTCUSDT,,ETHUSDT,", want: []string{"BTCUSDT", "", "ETHUSDT", ""}},
		{name: "keeps duplicates", in: "BTCUSDT,BTCUSDT", want: []string{"BTCUSDT", "BTCUSDT"}},
		{name: "empty value", in: "", want: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(context.Background(), strPtr(tt.in)))
		})
	}
	assert.Zero(t, ranker.gotK, "ranker must not be consulted for explicit lists")
}

func TestSymbolResolver_Auto(t *testing.T) {
	ranker := &fakeRanker{symbols: []string{"BTCUSDT", "ETHUSDT"}}
	r := NewSymbolResolver(ranker, 0, applogger.Nop(), nil)

	got := r.Resolve(context.Background(), nil)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, got)
	assert.Equal(t, DefaultTopK, ranker.gotK)
}

func TestSymbolResolver_AutoFailureDegradesToEmpty(t *testing.T) {
	ranker := &fakeRanker{err: errors.New("binance down")}
	m := newRecordingMetrics()
	r := NewSymbolResolver(ranker, 50, applogger.Nop(), m)

	got := r.Resolve(context.Background(), nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 50, ranker.gotK)
	assert.Equal(t, 1, m.resolveErrs)
}
