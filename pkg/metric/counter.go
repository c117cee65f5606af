package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every waydo metric.
const Namespace = "waydo"

// Counter is a labeled Prometheus counter.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

// Increment adds one to the series with the given label values.
func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// Collector exposes the underlying vector, mostly for tests.
func (c *Counter) Collector() *prometheus.CounterVec {
	return c.vec
}

// NewCounter registers a counter named waydo_<name> on reg.
func NewCounter(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: prometheus.BuildFQName(Namespace, "", name),
		Help: help,
		vec:  counter,
	}
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors. Each daemon owns one so tests never share state.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Set holds the daemon's counters.
type Set struct {
	// Transitions counts navigation transitions by kind.
	Transitions *Counter
	// Dispatches counts executor invocations by executor and result.
	Dispatches *Counter
	// Toggles counts toggle socket requests by result.
	Toggles *Counter
}

// NewSet registers the daemon counters on reg.
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		Transitions: NewCounter(reg, "transitions_total",
			"Navigation state transitions.", "transition"),
		Dispatches: NewCounter(reg, "dispatch_total",
			"Executor invocations by executor and result.", "executor", "result"),
		Toggles: NewCounter(reg, "toggle_requests_total",
			"Toggle socket requests by result.", "result"),
	}
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
