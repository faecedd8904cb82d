// Package metrics exposes Prometheus counters for ledger activity.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chargeledger/internal/ledger"
)

// Collector counts committed transitions and settled value. It doubles as a
// transition sink so the service needs no metrics-specific wiring.
type Collector struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	settled     prometheus.Counter
	refunded    prometheus.Counter
}

// NewCollector builds and registers the ledger metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chargeledger",
			Name:      "transitions_total",
			Help:      "Committed ledger state transitions by kind.",
		}, []string{"kind"}),
		settled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chargeledger",
			Name:      "settled_micro_units_total",
			Help:      "Total fees collected, in micro-units.",
		}),
		refunded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chargeledger",
			Name:      "refunded_micro_units_total",
			Help:      "Total excess tender refunded, in micro-units.",
		}),
	}

	registry.MustRegister(c.transitions, c.settled, c.refunded)
	return c
}

// Notify counts one committed transition.
func (c *Collector) Notify(_ context.Context, ev ledger.Event) error {
	c.transitions.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Kind == ledger.EventSessionSettled {
		c.settled.Add(float64(ev.Amount))
		c.refunded.Add(float64(ev.Refund))
	}
	return nil
}

// Handler serves the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
