package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordCacheLookup("hit")
	r.RecordCacheLookup("hit")
	r.RecordCacheLookup("miss")
	r.RecordCacheWriteError()
	r.RecordFetch("ok")
	r.RecordFetch("error")
	r.RecordResolveError()
	r.RecordScan(3, 0.25)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheWriteErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolveErrors))

	n, err := testutil.GatherAndCount(reg, "rsiscan_scan_duration_seconds", "rsiscan_scan_symbols")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
