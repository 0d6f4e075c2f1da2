// Package metrics wraps the Prometheus collectors the matching core
// exposes: order throughput, trade throughput, book depth, and processing
// latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the engine reports. All fields are safe for
// concurrent use, as Prometheus collectors always are.
type Metrics struct {
	OrdersReceived prometheus.Counter
	OrdersRejected prometheus.Counter
	TradesExecuted prometheus.Counter
	OrdersInBook   prometheus.Gauge
	ProcessLatency prometheus.Histogram

	registry  *prometheus.Registry
	startedAt time.Time
}

// New creates a Metrics instance registered against its own registry
// (rather than the global default), so multiple engines in the same
// process — as in tests — never collide on collector names.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		OrdersReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumenex_orders_received_total",
			Help: "Total orders accepted through the REST order endpoint.",
		}),
		OrdersRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumenex_orders_rejected_total",
			Help: "Total orders rejected at validation or unknown-symbol.",
		}),
		TradesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumenex_trades_executed_total",
			Help: "Total trades produced by the matching engine.",
		}),
		OrdersInBook: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lumenex_orders_in_book",
			Help: "Current count of resting orders across all books.",
		}),
		ProcessLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lumenex_process_order_latency_seconds",
			Help:    "Latency of order placement through the REST endpoint, accepted or rejected.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		}),
		registry:  reg,
		startedAt: time.Now(),
	}
}

// Handler serves the Prometheus exposition format for this Metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Uptime reports how long this Metrics instance (practically, the process)
// has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startedAt)
}

// ObserveLatency records the duration of one order placement.
func (m *Metrics) ObserveLatency(d time.Duration) {
	m.ProcessLatency.Observe(d.Seconds())
}
