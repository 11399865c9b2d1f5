// Package metrics exports resilience events to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vasiliy-maslov/order-management/internal/resilience"
)

const (
	MetricRemoteCallsTotal        = "order_remote_calls_total"
	MetricCircuitState            = "order_circuit_state"
	MetricCircuitTransitionsTotal = "order_circuit_transitions_total"
)

// circuit state gauge values
var stateValues = map[resilience.State]float64{
	resilience.StateClosed:   0,
	resilience.StateOpen:     1,
	resilience.StateHalfOpen: 2,
}

// Exporter implements resilience.Observer and serves the scrape endpoint.
//
// Safe for concurrent use.
type Exporter struct {
	registry *prometheus.Registry

	callsTotal       *prometheus.CounterVec
	circuitState     *prometheus.GaugeVec
	transitionsTotal *prometheus.CounterVec
}

func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRemoteCallsTotal,
			Help: "Remote call outcomes per dependency.",
		}, []string{"dependency", "outcome"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricCircuitState,
			Help: "Circuit state per dependency (0=closed, 1=open, 2=half-open).",
		}, []string{"dependency"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricCircuitTransitionsTotal,
			Help: "Circuit state transitions per dependency.",
		}, []string{"dependency", "from", "to"}),
	}

	registry.MustRegister(e.callsTotal, e.circuitState, e.transitionsTotal)
	return e
}

func (e *Exporter) CircuitStateChanged(dependency string, from, to resilience.State) {
	e.transitionsTotal.WithLabelValues(dependency, from.String(), to.String()).Inc()
	e.circuitState.WithLabelValues(dependency).Set(stateValues[to])
}

func (e *Exporter) CallOutcome(dependency string, outcome resilience.Outcome) {
	e.callsTotal.WithLabelValues(dependency, string(outcome)).Inc()
}

// Handler returns the scrape handler for the router's /metrics route.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
