package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the pipeline records into.
type Metrics struct {
	registry *prometheus.Registry

	// TradesIngested counts validated trades that entered the broker.
	TradesIngested prometheus.Counter

	// ParseErrors counts malformed or rejected provider frames.
	ParseErrors *prometheus.CounterVec

	// BrokerPublished counts trades accepted by the broker.
	BrokerPublished prometheus.Counter

	// BrokerDelivered counts per-subscriber deliveries.
	BrokerDelivered prometheus.Counter

	// BrokerLost counts deliveries abandoned mid-publish.
	BrokerLost prometheus.Counter

	// Signals counts consensus outcomes by action.
	Signals *prometheus.CounterVec

	// BrokerSubscribers tracks the attached subscriber count.
	BrokerSubscribers prometheus.Gauge

	// TradeLatency tracks the most recent source-to-receipt lag.
	TradeLatency prometheus.Gauge
}

// New builds the collector set on a fresh private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TradesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trades_ingested_total",
			Help: "Validated trades received from the market data provider",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parse_errors_total",
			Help: "Provider frames dropped as malformed or invalid",
		}, []string{"provider"}),
		BrokerPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broker_published_total",
			Help: "Trades accepted by the broker for fan-out",
		}),
		BrokerDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broker_delivered_total",
			Help: "Per-subscriber trade deliveries",
		}),
		BrokerLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "broker_inflight_lost_total",
			Help: "Deliveries abandoned because a subscriber left mid-publish",
		}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signals_total",
			Help: "Consensus signals emitted, by action",
		}, []string{"action"}),
		BrokerSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "broker_subscribers",
			Help: "Subscribers currently attached to the broker",
		}),
		TradeLatency: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trade_latency_ms",
			Help: "Source-to-receipt latency of the most recent trade, in ms",
		}),
	}

	m.registry.MustRegister(
		m.TradesIngested,
		m.ParseErrors,
		m.BrokerPublished,
		m.BrokerDelivered,
		m.BrokerLost,
		m.Signals,
		m.BrokerSubscribers,
		m.TradeLatency,
	)
	return m
}

// Gatherer exposes the private registry for serving and for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }
