package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersDistinctCollectors(t *testing.T) {
	m1 := New()
	m2 := New()

	m1.OrdersReceived.Inc()
	m2.OrdersReceived.Inc()
	m2.OrdersReceived.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m1.OrdersReceived))
	assert.Equal(t, float64(2), testutil.ToFloat64(m2.OrdersReceived))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.OrdersReceived.Inc()

	req := httptest.NewRequest("GET", "/v1/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "lumenex_orders_received_total")
}

func TestUptimeNonNegative(t *testing.T) {
	m := New()
	assert.GreaterOrEqual(t, m.Uptime().Seconds(), float64(0))
}

func TestObserveLatencyRecordsSample(t *testing.T) {
	m := New()
	m.ObserveLatency(5 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProcessLatency))

	families, err := m.registry.Gather()
	require.NoError(t, err)
	var samples uint64
	for _, mf := range families {
		if mf.GetName() == "lumenex_process_order_latency_seconds" {
			samples = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), samples)
}
