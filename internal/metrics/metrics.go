// Package metrics exports call metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/impaktor/pkg/impaktor"
)

// Collector holds the Prometheus metrics for impaktor calls. It implements
// impaktor.Observer.
type Collector struct {
	CallsTotal     *prometheus.CounterVec
	CallDuration   *prometheus.HistogramVec
	CallsInFlight  prometheus.Gauge
	ResponsesTotal *prometheus.CounterVec
}

// NewCollector creates the metrics and registers them with reg. A nil reg
// uses the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "impaktor",
				Name:      "calls_total",
				Help:      "Total number of calls by verb and outcome class",
			},
			[]string{"verb", "class"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "impaktor",
				Name:      "call_duration_seconds",
				Help:      "Call latency histogram",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"verb"},
		),
		CallsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "impaktor",
				Name:      "calls_in_flight",
				Help:      "Current number of calls awaiting a response",
			},
		),
		ResponsesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "impaktor",
				Name:      "responses_total",
				Help:      "Total number of HTTP responses by status code",
			},
			[]string{"code"},
		),
	}
}

// CallStarted increments the in-flight gauge.
func (c *Collector) CallStarted(impaktor.Verb, string) {
	c.CallsInFlight.Inc()
}

// CallFinished records a resolved call. Calls that never got a response do
// not count towards responses_total.
func (c *Collector) CallFinished(verb impaktor.Verb, _ string, class impaktor.Class, status int, d time.Duration) {
	c.CallsInFlight.Dec()
	c.CallsTotal.WithLabelValues(string(verb), string(class)).Inc()
	c.CallDuration.WithLabelValues(string(verb)).Observe(d.Seconds())
	if status != 0 {
		c.ResponsesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	}
}
