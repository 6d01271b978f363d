package logger

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are created per Logger and registered only when a Registerer is
// configured, so independent loggers never collide.
type metrics struct {
	emitted    *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	timers     prometheus.Histogram
	missing    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		emitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slogger_records_total",
				Help: "Total number of log records emitted",
			},
			[]string{"level"},
		),
		suppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slogger_records_suppressed_total",
				Help: "Total number of log calls dropped by the level gate",
			},
			[]string{"level"},
		),
		timers: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "slogger_timer_duration_seconds",
				Help:    "Elapsed time between TimeStart and TimeEnd",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 60, 300},
			},
		),
		missing: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "slogger_timer_missing_total",
				Help: "Total number of TimeEnd calls without a matching TimeStart",
			},
		),
	}
	if reg == nil {
		return m
	}
	m.emitted = register(reg, m.emitted)
	m.suppressed = register(reg, m.suppressed)
	m.timers = register(reg, m.timers)
	m.missing = register(reg, m.missing)
	return m
}

// register adds c to reg, reusing an identical collector that is already
// registered. Registration problems never reach the caller; the metric
// simply stays unexported.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}
