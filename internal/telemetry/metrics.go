package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TicksTotal counts completed random-walk mutation passes
	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "navify",
			Name:      "traffic_ticks_total",
			Help:      "Total number of traffic mutation ticks",
		},
	)

	// AreaCongestion tracks the latest congestion value per area
	AreaCongestion = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "navify",
			Name:      "area_congestion_percent",
			Help:      "Current congestion percentage of each monitored area",
		},
		[]string{"area"},
	)

	// Subscribers tracks currently connected realtime subscribers
	Subscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "navify",
			Name:      "realtime_subscribers",
			Help:      "Number of currently subscribed realtime clients",
		},
	)

	// Deliveries counts snapshots handed to subscribers, by trigger
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "navify",
			Name:      "snapshot_deliveries_total",
			Help:      "Total number of snapshots delivered to subscribers",
		},
		[]string{"trigger"},
	)

	// DeliveryFailures counts subscribers dropped after a failed delivery
	DeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "navify",
			Name:      "snapshot_delivery_failures_total",
			Help:      "Total number of failed snapshot deliveries",
		},
		[]string{"trigger"},
	)

	once sync.Once
)

// Delivery triggers used as label values.
const (
	TriggerSubscribe = "subscribe"
	TriggerRefresh   = "refresh"
	TriggerTick      = "tick"
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(TicksTotal)
		prometheus.DefaultRegisterer.Register(AreaCongestion)
		prometheus.DefaultRegisterer.Register(Subscribers)
		prometheus.DefaultRegisterer.Register(Deliveries)
		prometheus.DefaultRegisterer.Register(DeliveryFailures)
	})
}
