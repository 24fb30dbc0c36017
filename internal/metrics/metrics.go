// Package metrics exposes Prometheus collectors for calculator outcomes.
package metrics

import (
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
)

// Collector records every outcome produced by the service.
type Collector struct {
	outcomes *prometheus.CounterVec
	failures *prometheus.CounterVec
	angles   *prometheus.HistogramVec
}

// NewCollector creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered (useful in tests).
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heartaxis_outcomes_total",
				Help: "Total number of computed outcomes",
			},
			[]string{"mode", "result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heartaxis_rule_failures_total",
				Help: "Total number of failed validation rules",
			},
			[]string{"rule"},
		),
		angles: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heartaxis_axis_degrees",
				Help:    "Distribution of definitive axis angles",
				Buckets: prometheus.LinearBuckets(-180, 30, 13),
			},
			[]string{"deviation"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.outcomes, c.failures, c.angles)
	}
	return c
}

// Observe records one outcome.
func (c *Collector) Observe(o domain.Outcome) {
	result := ResultValid
	if o.FormInvalid {
		result = ResultInvalid
	}
	c.outcomes.WithLabelValues(string(o.Mode), result).Inc()

	for _, rule := range o.Validation.Rules() {
		c.failures.WithLabelValues(string(rule)).Inc()
	}
	if o.HasAngle() && !o.FormInvalid {
		c.angles.WithLabelValues(string(o.Deviation)).Observe(o.Angle)
	}
}
